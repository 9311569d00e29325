package schedule

import (
	"go.uber.org/zap"

	"github.com/mrlokans/berthplan/internal/entities"
)

// Result is the output of one pipeline run.
type Result struct {
	Records  []entities.ScheduleRecord
	Outcomes []BlockOutcome
}

// Counts returns the number of parsed, skipped and errored blocks.
func (r Result) Counts() (parsed, skipped, errored int) {
	for _, o := range r.Outcomes {
		switch o.Status {
		case StatusParsed:
			parsed++
		case StatusSkipped:
			skipped++
		case StatusErrored:
			errored++
		}
	}
	return
}

// Pipeline splits pasted bulletin text into blocks and parses each of them.
// It performs no I/O; persisting the records is up to the caller.
type Pipeline struct {
	parser *Parser
	marker string
	logger *zap.Logger
}

// NewPipeline creates a pipeline around parser. A nil logger discards output.
func NewPipeline(parser *Parser, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		parser: parser,
		marker: parser.marker,
		logger: logger,
	}
}

// Run parses every block of text with the same reference year and import id.
// Records are returned in block order. Blocks that cannot be parsed are left
// out and reported in Result.Outcomes.
func (p *Pipeline) Run(text string, year int, importID string) Result {
	blocks := SplitBlocks(text, p.marker)

	result := Result{Outcomes: make([]BlockOutcome, 0, len(blocks))}
	for i, block := range blocks {
		outcome := p.parser.ParseBlock(block, year, importID)
		outcome.Index = i

		switch outcome.Status {
		case StatusSkipped:
			p.logger.Info("Skipped schedule block",
				zap.Int("block", i),
				zap.String("ship_name", outcome.ShipName),
				zap.String("reason", outcome.Reason),
				zap.String("import_id", importID),
			)
		case StatusErrored:
			p.logger.Error("Failed to parse schedule block",
				zap.Int("block", i),
				zap.String("ship_name", outcome.ShipName),
				zap.String("reason", outcome.Reason),
				zap.String("import_id", importID),
			)
		default:
			if len(outcome.Records) > LongStayDays {
				p.logger.Warn("Long stay expanded",
					zap.Int("block", i),
					zap.String("ship_name", outcome.ShipName),
					zap.Int("days", len(outcome.Records)),
					zap.String("import_id", importID),
				)
			}
			result.Records = append(result.Records, outcome.Records...)
		}

		result.Outcomes = append(result.Outcomes, outcome)
	}

	p.logger.Debug("Schedule text parsed",
		zap.Int("blocks", len(blocks)),
		zap.Int("records", len(result.Records)),
		zap.String("import_id", importID),
	)
	return result
}
