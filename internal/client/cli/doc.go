// Package cli provides the interactive MealTrack terminal client.
//
// It wires configuration, the local session store, the API services and a
// read-eval-print loop. On start it resumes the saved session if the server
// accepts it, then starts a background connectivity watcher.
//
// Commands:
//   - register, login, logout
//   - search <text>: debounced food search, results are printed when they arrive
//   - add <category> #<n> [quantity] [measure]: log search hit n
//   - add <category> <calories> <name>: log a custom entry
//   - delete <category> <id> [date], show [date], totals [date]
//   - watch [date], unwatch: live updates of a daily log
//   - export [date] [file]: upload a JSON export, print a download link and
//     optionally save a copy to file
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
