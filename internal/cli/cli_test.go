package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seedYAML = `
categories:
  - name: Hardware
  - name: Billing
    disabled: true
customers:
  - first_name: Ada
    last_name: Lovelace
    email: Ada@Example.com
    password: correct-horse
staff:
  - name: Olive Operator
    email: olive@example.com
    password: battery-staple
    role: operator
  - name: Max Manager
    email: max@example.com
    password: battery-staple
    role: MANAGER
`

func runCLI(t *testing.T, dbPath string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("AUTH_BCRYPT_COST", "4")
	t.Setenv("REDIS_ADDR", "")

	root, sess := newRootCommand()
	defer sess.close()

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--sqlite-path", dbPath}, args...))
	err := root.Execute()
	return out.String(), err
}

func writeSeed(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(seedYAML), 0o600))
	return path
}

func TestParseSeed(t *testing.T) {
	seed, err := ParseSeed(strings.NewReader(seedYAML))
	require.NoError(t, err)

	require.Len(t, seed.Categories, 2)
	assert.True(t, seed.Categories[1].Disabled)
	require.Len(t, seed.Customers, 1)
	assert.Equal(t, "Ada", seed.Customers[0].FirstName)
	require.Len(t, seed.Staff, 2)
	assert.Equal(t, "operator", seed.Staff[0].Role)
}

func TestParseSeedRejectsUnknownRole(t *testing.T) {
	_, err := ParseSeed(strings.NewReader("staff:\n  - name: X\n    email: x@example.com\n    role: janitor\n"))
	assert.ErrorContains(t, err, `unknown role "janitor"`)
}

func TestParseSeedRejectsUnknownFields(t *testing.T) {
	_, err := ParseSeed(strings.NewReader("categories:\n  - title: Hardware\n"))
	assert.Error(t, err)
}

func TestParseSeedEmptyDocument(t *testing.T) {
	seed, err := ParseSeed(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, seed.Categories)
}

func TestSeedIsRepeatable(t *testing.T) {
	db := filepath.Join(t.TempDir(), "helpdesk.db")
	seedPath := writeSeed(t)

	out, err := runCLI(t, db, "seed", "-f", seedPath)
	require.NoError(t, err)
	assert.Contains(t, out, "5 created, 0 skipped")

	out, err = runCLI(t, db, "seed", "-f", seedPath)
	require.NoError(t, err)
	assert.Contains(t, out, "0 created, 5 skipped")
	assert.Contains(t, out, "= customer Ada@Example.com (exists)")
}

func TestCategoryCommands(t *testing.T) {
	db := filepath.Join(t.TempDir(), "helpdesk.db")

	out, err := runCLI(t, db, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "schema applied (sqlite)")

	out, err = runCLI(t, db, "category", "add", "Network")
	require.NoError(t, err)
	assert.Contains(t, out, "added Network")

	out, err = runCLI(t, db, "category", "disable", "network")
	require.NoError(t, err)
	assert.Contains(t, out, "disabled Network")

	out, err = runCLI(t, db, "category", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Network")
	assert.Contains(t, out, "false")

	_, err = runCLI(t, db, "category", "disable", "Network")
	assert.Error(t, err)

	_, err = runCLI(t, db, "category", "enable", "Nope")
	assert.ErrorContains(t, err, "category not found")
}

func TestVersionSkipsStore(t *testing.T) {
	SetVersion("1.2.3")
	t.Cleanup(func() { SetVersion("dev") })

	out, err := runCLI(t, filepath.Join(t.TempDir(), "unused.db"), "version")
	require.NoError(t, err)
	assert.Equal(t, "helpdeskctl 1.2.3\n", out)
}
