package version

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func TestFields(t *testing.T) {
	t.Parallel()

	fields := Fields()
	require.Len(t, fields, 6)

	kv := make(map[string]any, len(fields)/2)
	for i := 0; i < len(fields); i += 2 {
		key, ok := fields[i].(string)
		require.True(t, ok, "key at %d", i)

		kv[key] = fields[i+1]
	}

	require.Equal(t, Version, kv["version"])
	require.Equal(t, Commit, kv["commit"])
	require.Equal(t, BuildTime, kv["build_time"])
	require.Contains(t, Full(), Short())
}

func TestVersionCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "full",
			args: []string{"version"},
			want: "alarm-keypad " + Full() + "\n",
		},
		{
			name: "short",
			args: []string{"version", "--short"},
			want: Short() + "\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var (
				out  bytes.Buffer
				root = &cobra.Command{Use: "alarm-keypad"}
			)

			AttachCobraVersionCommand(root)
			root.SetOut(&out)
			root.SetArgs(tt.args)

			require.NoError(t, root.Execute())
			require.Equal(t, tt.want, out.String())
		})
	}
}
