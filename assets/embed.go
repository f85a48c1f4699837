// apps/go-server/assets/embed.go
//
// Files compiled into the binary:
//   - sql/*.sql   schema migrations, applied in lexical order by the migrate command.
//   - game.yaml   default tuning and level catalog, used when no config file is found.

package assets

import (
	"embed"
	"io/fs"
	"sort"
	"strings"
)

//go:embed sql/*.sql game.yaml
var FS embed.FS

// GameYAML returns the embedded default game configuration.
func GameYAML() ([]byte, error) {
	return FS.ReadFile("game.yaml")
}

// Migrations lists the embedded migration files in the order they must run.
func Migrations() ([]string, error) {
	var out []string
	err := fs.WalkDir(FS, "sql", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(strings.ToLower(d.Name()), ".sql") {
			out = append(out, path)
		}
		return nil
	})
	sort.Strings(out)
	return out, err
}
