package config

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
)

func FetchAWSParams(ctx context.Context, keys ...string) (map[string]string, error) {
	awsConf, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	withDecryption := true
	parameters, err := ssm.NewFromConfig(awsConf).GetParameters(ctx, &ssm.GetParametersInput{
		Names:          keys,
		WithDecryption: &withDecryption,
	})
	if err != nil {
		return nil, fmt.Errorf("get parameters: %w", err)
	}

	params := make(map[string]string)
	for _, param := range parameters.Parameters {
		params[paramName(param)] = paramValue(param)
	}

	if len(params) != len(keys) {
		missingKeys := make([]string, 0)
		for _, key := range keys {
			if _, exists := params[key]; !exists {
				missingKeys = append(missingKeys, key)
			}
		}

		return params, fmt.Errorf("missing parameter values: %v", missingKeys)
	}

	return params, nil
}

func paramName(p types.Parameter) string {
	if p.Name == nil {
		return ""
	}
	return *p.Name
}

func paramValue(p types.Parameter) string {
	if p.Value == nil {
		return ""
	}
	return *p.Value
}
