package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/pictomancers/shaded/pkg/shaded/build"
)

// WriteBuildSummary prints a framed summary of a finished build. Plain mode
// drops the styling for scripts and logs.
func WriteBuildSummary(w io.Writer, res *build.Result, plain bool) error {
	lines := []string{
		label("Archive:", plain) + " " + value(res.ArchivePath, plain),
		label("Size:", plain) + " " + size(humanize.Bytes(uint64(res.ArchiveSize)), plain),
		label("Staging:", plain) + " " + value(res.StagingDir, plain),
		label("Took:", plain) + " " + value(res.Duration.Round(time.Millisecond).String(), plain),
		"",
	}

	for _, m := range res.Manifest.ShaderPacks {
		counts := fmt.Sprintf("%d shaders, %d textures, %d presets, %d addons",
			m.ShaderCount, m.TextureCount, m.PresetCount, m.AddonCount)
		if !plain {
			counts = MutedStyle.Render(counts)
		}
		lines = append(lines, fmt.Sprintf("%s  %s", value(m.Name, plain), counts))
	}

	title := fmt.Sprintf("Built %s (%d %s)", res.Manifest.Name, len(res.Manifest.ShaderPacks),
		plural(len(res.Manifest.ShaderPacks), "shaderpack", "shaderpacks"))

	var out string
	if plain {
		out = title + "\n" + strings.Join(lines, "\n") + "\n"
	} else {
		out = TitleStyle.Render(title) + "\n" + SummaryBox.Render(strings.Join(lines, "\n")) + "\n"
	}
	_, err := io.WriteString(w, out)
	return err
}

func label(s string, plain bool) string {
	if plain {
		return s
	}
	return LabelStyle.Render(s)
}

func value(s string, plain bool) string {
	if plain {
		return s
	}
	return ValueStyle.Render(s)
}

func size(s string, plain bool) string {
	if plain {
		return s
	}
	return SizeStyle.Render(s)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
