package config

import (
	"fmt"
	"strconv"
	"strings"
)

func parseIDs(idsStr string) ([]int64, error) {
	if idsStr == "" {
		return nil, nil
	}

	idStrings := strings.Split(idsStr, ",")
	ids := make([]int64, 0, len(idStrings))
	for _, idString := range idStrings {
		id, err := strconv.ParseInt(strings.TrimSpace(idString), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse IDs: invalid ID %s: %w", idString, err)
		}
		ids = append(ids, id)
	}

	return ids, nil
}
