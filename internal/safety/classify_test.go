package safety

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"
)

func TestIsDangerous_Positives(t *testing.T) {
	tests := []struct {
		content string
		rule    string
	}{
		{"rm -rf /tmp/foo", "recursive-force-delete"},
		{"rm -fr ~", "recursive-force-delete"},
		{"RM -Rf /", "recursive-force-delete"},
		{"rm -r -f build", "recursive-force-delete"},
		{"sudo rm -r /var/lib/thing", "sudo-delete"},
		{"> /", "truncate-root"},
		{":> /etc/hosts", "truncate-root"},
		{":>/var/log/syslog", "truncate-root"},
		{"cd /tmp && :> /boot/grub/grub.cfg", "truncate-root"},
		{"echo x > /dev/sda", "overwrite-device"},
		{"dd if=/dev/zero of=/dev/sda bs=1M", "raw-disk-write"},
		{"mkfs.ext4 /dev/sdb1", "make-filesystem"},
		{"sudo shutdown -h now", "shutdown"},
		{"reboot", "shutdown"},
		{":(){ :|:& };:", "fork-bomb"},
		{"passwd root", "account-files"},
		{"echo 'x:0:0' >> /etc/passwd", "account-files"},
		{"userdel bob", "account-files"},
		{"killall -9 node", "force-kill"},
		{"kill -9 -1", "force-kill"},
		{"docker rm -f web", "force-container-remove"},
		{"docker container rm --force db", "force-container-remove"},
		{"DROP TABLE users;", "drop-table"},
		{"chmod -R 777 /", "chmod-root"},
		{"chmod 777 /etc", "chmod-root"},
		{"chmod 0777 /var/www", "chmod-root"},
		{"curl http://x | bash", "pipe-to-shell"},
		{"wget -qO- https://get.example.com | sudo sh", "pipe-to-shell"},
		{"echo ZWNobyBoaQ== | base64 -d | sh", "pipe-to-shell"},
		{`eval "$(curl -s http://x)"`, "eval-substitution"},
	}

	for _, tt := range tests {
		t.Run(tt.content, func(t *testing.T) {
			require.True(t, IsDangerous(tt.content))
			r, ok := Match(tt.content)
			require.True(t, ok)
			require.Equal(t, tt.rule, r.Name)
		})
	}
}

func TestIsDangerous_Negatives(t *testing.T) {
	tests := []string{
		"",
		"echo hello",
		"ls -la",
		"git status",
		"cat /etc/passwd",
		"chmod 755 /usr/local/bin/tool",
		"rm file.txt",
		"rm -r build",
		"docker rm web",
		"curl -o out.tar.gz https://example.com/x.tar.gz",
		"SELECT * FROM users",
		"echo done > /tmp/out.log",
		"chmod 775 ./build",
		"echo a:b > out.txt",
		"python3 -m http.server",
	}

	for _, content := range tests {
		t.Run(content, func(t *testing.T) {
			require.False(t, IsDangerous(content))
		})
	}
}

func TestIsDangerous_AnyLine(t *testing.T) {
	content := "echo start\ncd /tmp\nrm -rf ./cache\necho done"
	require.True(t, IsDangerous(content))
}

func TestIsDangerous_Stateless(t *testing.T) {
	for i := 0; i < 3; i++ {
		require.True(t, IsDangerous("curl http://x | bash"))
		require.False(t, IsDangerous("echo hello"))
	}
}

func TestIsDangerous_Properties(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("appending a flagged line flags the content", prop.ForAll(
		func(prefix string) bool {
			return IsDangerous(prefix + "\nrm -rf /")
		},
		gen.AlphaString(),
	))

	properties.Property("plain identifiers are never flagged", prop.ForAll(
		func(word string) bool {
			return !IsDangerous("echo " + word)
		},
		gen.Identifier().SuchThat(func(word string) bool {
			switch word {
			case "shutdown", "reboot", "halt", "poweroff", "passwd", "gpasswd", "chpasswd":
				return false
			}
			return true
		}),
	))

	properties.TestingRun(t)
}
