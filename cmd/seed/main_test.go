package main

import (
	"io"
	"log/slog"
	"testing"

	"github.com/Dosada05/slot-arena/models"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseAdmin(t *testing.T, args ...string) (adminOptions, error) {
	t.Helper()
	var opts adminOptions
	fs := pflag.NewFlagSet("admin", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	opts.AddFlags(fs)
	return opts, fs.Parse(args)
}

func TestAdminOptions(t *testing.T) {
	opts, err := parseAdmin(t,
		"--username", "root",
		"--password", "secret123",
		"--email", "root@example.com",
		"--role", "super_admin",
		"--permission", "reset_tournaments",
		"--permission", "view_analytics",
	)
	require.NoError(t, err)

	input, err := opts.Input()
	require.NoError(t, err)
	assert.Equal(t, "root", input.Username)
	assert.Equal(t, models.RoleSuperAdmin, input.Role)
	require.NotNil(t, input.Email)
	assert.Equal(t, "root@example.com", *input.Email)
	assert.Equal(t, []models.Permission{models.PermResetTournaments, models.PermViewAnalytics}, input.Permissions)
}

func TestAdminOptions_Defaults(t *testing.T) {
	opts, err := parseAdmin(t, "--username", "mod", "--password", "secret123")
	require.NoError(t, err)

	input, err := opts.Input()
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, input.Role)
	assert.Nil(t, input.Email)
	assert.Empty(t, input.Permissions)
}

func TestAdminOptions_Errors(t *testing.T) {
	opts, err := parseAdmin(t, "--username", "mod")
	require.NoError(t, err)
	_, err = opts.Input()
	assert.Error(t, err)

	opts, err = parseAdmin(t, "--username", "mod", "--password", "secret123", "--permission", "sudo")
	require.NoError(t, err)
	_, err = opts.Input()
	assert.Error(t, err)
}

func TestRun(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	assert.NoError(t, run("tournaments", nil, logger))
	assert.NoError(t, run("admin", []string{"--username", "root", "--password", "secret123"}, logger))
	assert.Error(t, run("admin", []string{"--username", "root", "--password", "short"}, logger))
	assert.Error(t, run("drop", nil, logger))
}
