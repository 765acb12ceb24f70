/*
Package logging offers a client for emitting log entries to the host runtime.

Entries are sent as host calls on the "logging" capability with the Level as
the function name, so tests can capture them with a plain host-call function
or hostmock. Config.MinLevel filters out chatty levels before any host call is
made and Config.Prefix tags every message with its source:

	log, err := logging.New(logging.Config{MinLevel: logging.LevelWarn, Prefix: "users: "})
	if err != nil {
		return err
	}
	log.Debug("dropped")
	log.Warn("sent as users: ...")

The stub package accepts a Client to report matched and unmatched requests.
*/
package logging
