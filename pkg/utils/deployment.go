package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/FleexSecurity/funcdeploy/pkg/models"
	"gopkg.in/yaml.v2"
)

func ReadDeploymentFile(nameOrPath string) (*models.Deployment, error) {
	var path string

	if FileExists(nameOrPath) {
		path = nameOrPath
	} else {
		deploymentsPath, err := GetDeploymentsDir()
		if err != nil {
			return nil, err
		}
		for _, ext := range []string{".yaml", ".yml"} {
			if candidate := filepath.Join(deploymentsPath, nameOrPath+ext); FileExists(candidate) {
				path = candidate
				break
			}
		}
		if path == "" {
			return nil, fmt.Errorf("%w: %s", models.ErrDeploymentNotFound, nameOrPath)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	deployment := &models.Deployment{}
	if err := yaml.Unmarshal(data, deployment); err != nil {
		return nil, fmt.Errorf("in file %q: %w", path, err)
	}

	if deployment.Directory != "" {
		deployment.Directory = ExpandPath(deployment.Directory)
		if !filepath.IsAbs(deployment.Directory) {
			deployment.Directory = filepath.Join(filepath.Dir(path), deployment.Directory)
		}
	}

	return deployment, nil
}

func ListDeployments() ([]string, error) {
	deploymentsPath, err := GetDeploymentsDir()
	if err != nil {
		return nil, err
	}

	if !FileExists(deploymentsPath) {
		return []string{}, nil
	}

	files, err := os.ReadDir(deploymentsPath)
	if err != nil {
		return nil, err
	}

	var deployments []string
	for _, f := range files {
		if strings.HasSuffix(f.Name(), ".yaml") || strings.HasSuffix(f.Name(), ".yml") {
			deployments = append(deployments, strings.TrimSuffix(strings.TrimSuffix(f.Name(), ".yaml"), ".yml"))
		}
	}
	return deployments, nil
}

func SaveDeployment(deployment *models.Deployment) (string, error) {
	deploymentsPath, err := GetDeploymentsDir()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(deploymentsPath, 0755); err != nil {
		return "", err
	}

	data, err := yaml.Marshal(deployment)
	if err != nil {
		return "", err
	}

	path := filepath.Join(deploymentsPath, deployment.Name+".yaml")
	return path, os.WriteFile(path, data, 0600)
}

func GetDeploymentsDir() (string, error) {
	dir, err := GetFuncdeployDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "deployments"), nil
}
