package cli

import (
	"embed"
	"io/fs"
)

//go:embed help/*.md
var helpFS embed.FS

func helpTopics() fs.FS {
	sub, err := fs.Sub(helpFS, "help")
	if err != nil {
		panic(err)
	}
	return sub
}
