package utils

import (
	"fmt"
	"os"
	"strings"

	"github.com/FleexSecurity/funcdeploy/pkg/models"
)

// ParseSettings splits each entry at its first '='. A repeated key keeps its first position
// and takes the last value.
func ParseSettings(pairs []string) ([]models.Setting, error) {
	var settings []models.Setting
	index := make(map[string]int)

	for _, pair := range pairs {
		i := strings.Index(pair, "=")
		if i <= 0 {
			return nil, fmt.Errorf("%w: %q", models.ErrInvalidSetting, pair)
		}
		key, value := pair[:i], pair[i+1:]

		if pos, ok := index[key]; ok {
			settings[pos].Value = value
			continue
		}
		index[key] = len(settings)
		settings = append(settings, models.Setting{Key: key, Value: value})
	}
	return settings, nil
}

func CheckDirectory(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: directory path %s does not exist", models.ErrInvalidDirectory, path)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: path %s is not a directory", models.ErrInvalidDirectory, path)
	}
	return nil
}
