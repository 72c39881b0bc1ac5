package catalog

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"

	"github.com/wonny/macrodash/pkg/config"
)

// Load reads a YAML catalog file
// SSOT 핵심: KnownFields(true)로 오타/미사용 필드 즉시 실패
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read catalog: %v", config.ErrConfiguration, err)
	}
	return Parse(data)
}

// LoadOrDefault loads path, or returns the compiled-in catalog when path is empty
func LoadOrDefault(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

// Parse decodes, fills defaults and validates catalog YAML
func Parse(data []byte) (*Catalog, error) {
	var cat Catalog
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true) // 알 수 없는 필드 발견 시 에러 반환
	if err := dec.Decode(&cat); err != nil {
		return nil, fmt.Errorf("%w: decode catalog: %v", config.ErrConfiguration, err)
	}

	if err := applyDefaults(&cat); err != nil {
		return nil, fmt.Errorf("%w: catalog defaults: %v", config.ErrConfiguration, err)
	}

	if err := Validate(&cat); err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrConfiguration, err)
	}

	return &cat, nil
}

// applyDefaults fills divisor=1 and sign=+1 where omitted
func applyDefaults(cat *Catalog) error {
	for i := range cat.Formulas {
		if err := defaults.Set(&cat.Formulas[i]); err != nil {
			return err
		}
		for j := range cat.Formulas[i].Terms {
			if err := defaults.Set(&cat.Formulas[i].Terms[j]); err != nil {
				return err
			}
		}
	}
	return nil
}

// Hash generates SHA256 hash from the catalog (canonical JSON)
// 주의: map 대신 struct 사용으로 해시 재현성 보장
func (c *Catalog) Hash() (string, error) {
	jsonBytes, err := json.Marshal(c)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(jsonBytes)
	return hex.EncodeToString(sum[:]), nil
}
