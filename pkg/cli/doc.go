/*
Package cli provides command-line helpers for the budgetd command.

Output Formatting:

Client commands print their result as text or JSON:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, result); err != nil {
		return err
	}

Values implementing Texter control their own text rendering.

Progress Reporting:

The bench command drives many goroutines against the registry and reports
throughput while they run:

	progress := cli.NewProgress(os.Stderr, total)
	go progress.Run(ctx, time.Second)
	progress.Add(1) // from any goroutine
	progress.Finish()

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

Errors:

ConfigError and CommandError carry the failing file or command; ExitCode
maps an error to the process exit status.
*/
package cli
