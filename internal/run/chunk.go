package run

import (
	"fmt"
	"html/template"

	term2html "github.com/buildkite/terminal-to-html"
	"github.com/leg100/console/internal/resource"
)

// MaxChunkSize is the largest chunk of logs a runner may upload at once.
const MaxChunkSize = 1 << 20

type (
	// Chunk is a section of a run's CI logs.
	Chunk struct {
		RunID  resource.ID
		Offset int // Position within logs.
		Data   []byte
	}

	AppendLogsOptions struct {
		RunID  resource.ID `schema:"run_id,required"`
		Offset int         `schema:"offset"`
		Data   []byte      `schema:"-"`
	}
)

func newChunk(opts AppendLogsOptions) (Chunk, error) {
	if len(opts.Data) == 0 {
		return Chunk{}, fmt.Errorf("cowardly refusing to create empty log chunk")
	}
	if opts.Offset < 0 {
		return Chunk{}, fmt.Errorf("invalid offset: %d", opts.Offset)
	}
	return Chunk{
		RunID:  opts.RunID,
		Offset: opts.Offset,
		Data:   opts.Data,
	}, nil
}

// RenderLogs converts logs containing ANSI escape codes to HTML.
func RenderLogs(logs []byte) template.HTML {
	return template.HTML(term2html.Render(logs))
}
