// Package schedule turns vessel schedules pasted from a port-authority bulletin
// into schedule records ready for storage.
//
// # Flow
//
//	pasted text → SplitBlocks → Parser.ParseBlock (per block) → []entities.ScheduleRecord
//
// Each block describes one vessel's continuous stay and expands into one record
// per calendar day. Every block ends in exactly one of three outcomes:
//
//   - parsed: records produced
//   - skipped: a required field is missing or the vessel lies outside the
//     managed quay range; not an error
//   - errored: fields matched but could not be turned into a valid stay
//     (unknown bit, impossible date); logged and dropped
//
// A bad block never affects its neighbours, and the pipeline never fails as a
// whole. Records from one block share a DataHash, which storage uses to tell
// an unchanged re-import from a changed one.
//
// # Example
//
//	parser := schedule.NewParser(schedule.Options{Location: tokyo})
//	pipeline := schedule.NewPipeline(parser, logger)
//	result := pipeline.Run(text, 2025, importID)
package schedule
