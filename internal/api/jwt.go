package api

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/lexibot/word-of-the-day-bot/internal/config"
	"github.com/lexibot/word-of-the-day-bot/internal/dal"
)

type (
	JWTProcessor struct {
		issuer         string
		audience       []string
		accessExpireIn time.Duration

		secret []byte
	}

	Claims struct {
		UserID    int64 `json:"user_id,omitempty"`
		GroupID   int64 `json:"group_id,omitempty"`
		ChannelID int64 `json:"channel_id,omitempty"`
		jwt.RegisteredClaims
	}
)

func NewJWTProcessor(conf config.JWT, accessExpireIn time.Duration) *JWTProcessor {
	return &JWTProcessor{
		issuer:         conf.Issuer,
		audience:       conf.Audience,
		accessExpireIn: accessExpireIn,

		secret: []byte(conf.Secret),
	}
}

func (p *JWTProcessor) ToAccessToken(id dal.Identity) (string, error) {
	now := time.Now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID:    id.UserID,
		GroupID:   id.GroupID,
		ChannelID: id.ChannelID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    p.issuer,
			Subject:   id.Key(),
			Audience:  p.audience,
			ExpiresAt: jwt.NewNumericDate(now.Add(p.accessExpireIn)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
	})

	signedString, err := token.SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signedString, nil
}

func (p *JWTProcessor) ParseAccessToken(token string) (dal.Identity, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return p.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}))
	if err != nil {
		return dal.Identity{}, fmt.Errorf("parse token: %w", err)
	}
	if !parsed.Valid {
		return dal.Identity{}, fmt.Errorf("invalid token claims")
	}

	if iss, _ := claims.GetIssuer(); iss != p.issuer {
		return dal.Identity{}, fmt.Errorf("invalid issuer")
	}
	if aud, _ := claims.GetAudience(); !containsAll(aud, p.audience) {
		return dal.Identity{}, fmt.Errorf("invalid audience")
	}

	id := dal.Identity{UserID: claims.UserID, GroupID: claims.GroupID, ChannelID: claims.ChannelID}
	if !id.Valid() {
		return dal.Identity{}, fmt.Errorf("invalid identity claims")
	}
	return id, nil
}

// containsAll returns true if all elements in required are present in actual
func containsAll(actual, required []string) bool {
	if len(required) == 0 {
		return true
	}
	if len(actual) < len(required) {
		return false
	}
	for _, r := range required {
		found := false
		for _, a := range actual {
			if a == r {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
