package ops

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/snip/internal/config"
	"github.com/hpungsan/snip/internal/errors"
)

func TestInspect(t *testing.T) {
	database := setupDB(t)
	ctx := context.Background()
	cfg := config.DefaultConfig()
	cfg.DefaultShell = "/bin/zsh"

	mustAdd(t, database, "wipe", "echo start\nrm -rf {{target:/tmp/x}}\n", "bash")
	mustAdd(t, database, "hello", "print('hi {{who}}')", "py")
	mustAdd(t, database, "lua thing", "print(1)", "lua")

	out, err := Inspect(ctx, database, cfg, InspectInput{Ref: "wipe"})
	require.NoError(t, err)
	require.Equal(t, "shell", out.Runner)
	require.Equal(t, "bash", out.Command)
	require.True(t, out.Dangerous)
	require.Equal(t, "recursive-force-delete", out.MatchedRule)
	require.Len(t, out.Variables, 1)
	require.Equal(t, "target", out.Variables[0].Name)
	require.NotNil(t, out.Variables[0].Default)
	require.Equal(t, "/tmp/x", *out.Variables[0].Default)

	out, err = Inspect(ctx, database, cfg, InspectInput{Ref: "hello"})
	require.NoError(t, err)
	require.Equal(t, "python", out.Runner)
	require.Equal(t, "python3", out.Command)
	require.False(t, out.Dangerous)
	require.Empty(t, out.MatchedRule)
	require.Len(t, out.Variables, 1)
	require.Nil(t, out.Variables[0].Default)

	out, err = Inspect(ctx, database, cfg, InspectInput{Ref: "Lua Thing"})
	require.NoError(t, err)
	require.Equal(t, "fallback(lua)", out.Runner)
	require.Equal(t, "/bin/zsh", out.Command)
	require.Equal(t, "sh", out.Extension)
	require.NotNil(t, out.Variables)
	require.Empty(t, out.Variables)

	_, err = Inspect(ctx, database, cfg, InspectInput{Ref: "missing"})
	require.True(t, errors.Is(err, errors.ErrNotFound))
}
