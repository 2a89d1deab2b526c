// Package display renders the user-facing parts of the filefuser CLI that
// are not log lines: warnings, the dry-run classification listing of the
// scan command, and the run history table.
//
// Every function writes to an io.Writer. Colors are applied only when the
// writer is a terminal:
//
//	p := display.NewProgressIndicator(os.Stdout, len(records))
//	p.Start(searchDir)
//	for _, r := range records {
//	    p.Step(r)
//	}
//	p.Complete(models.Summarize(records))
package display
