package cmd

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FleexSecurity/funcdeploy/pkg/controller"
	"github.com/FleexSecurity/funcdeploy/pkg/models"
	"github.com/FleexSecurity/funcdeploy/pkg/utils"
)

func withHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	homedir.DisableCache = true
	t.Cleanup(func() { homedir.DisableCache = false })
	return home
}

func TestSaveDeploymentRejectsInvalidDeployment(t *testing.T) {
	home := withHome(t)
	c := controller.Controller{}

	tests := []struct {
		name       string
		deployment models.Deployment
		wantErr    error
	}{
		{
			name:       "missing target",
			deployment: models.Deployment{Name: "broken", AppName: "myapp", Directory: t.TempDir()},
			wantErr:    models.ErrMissingTarget,
		},
		{
			name:       "missing directory",
			deployment: models.Deployment{Name: "broken", SubscriptionID: "s1", AppName: "myapp", ResourceGroup: "rg1"},
			wantErr:    models.ErrInvalidDirectory,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := tt.deployment
			opts, err := deployOptions(&d, false, false)
			require.NoError(t, err)

			_, err = saveDeployment(c, &d, &opts)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.False(t, utils.FileExists(filepath.Join(home, "funcdeploy", "deployments", "broken.yaml")))
		})
	}
}

func TestSaveDeploymentWritesValidDeployment(t *testing.T) {
	home := withHome(t)

	d := &models.Deployment{
		Name:           "devkit",
		SubscriptionID: "s1",
		AppName:        "myapp",
		ResourceGroup:  "rg1",
		Directory:      t.TempDir(),
		Settings:       []string{"A=1"},
	}
	opts, err := deployOptions(d, true, false)
	require.NoError(t, err)

	path, err := saveDeployment(controller.Controller{}, d, &opts)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "funcdeploy", "deployments", "devkit.yaml"), path)
	assert.Equal(t, models.DefaultFunction, opts.Upload.RemoteName)
	assert.True(t, opts.SkipProvision)
}

func TestDeployOptionsRejectsBadSetting(t *testing.T) {
	_, err := deployOptions(&models.Deployment{Settings: []string{"novalue"}}, false, false)
	assert.ErrorIs(t, err, models.ErrInvalidSetting)
}

func TestWithSignalContextReleasesContext(t *testing.T) {
	var inner context.Context
	want := errors.New("deploy failed")

	err := withSignalContext(func(ctx context.Context) error {
		inner = ctx
		assert.NoError(t, ctx.Err())
		return want
	})
	assert.ErrorIs(t, err, want)
	require.NotNil(t, inner)
	assert.ErrorIs(t, inner.Err(), context.Canceled)
}
