package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var ErrInvalidMedia = errors.New("invalid media list")

// DecodeMedia decodes the JSON media column into an ordered URL list.
func DecodeMedia(raw []byte) ([]string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return []string{}, nil
	}

	var items []string
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMedia, err)
	}
	if err := ValidateMedia(items); err != nil {
		return nil, err
	}
	return items, nil
}

func EncodeMedia(items []string) ([]byte, error) {
	if items == nil {
		items = []string{}
	}
	return json.Marshal(items)
}

func ValidateMedia(items []string) error {
	for i, item := range items {
		u, err := url.Parse(strings.TrimSpace(item))
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("%w: item %d is not an absolute http(s) url", ErrInvalidMedia, i)
		}
	}
	return nil
}
