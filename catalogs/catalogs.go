// Package catalogs provides embedded default data shipped with the binary.
package catalogs

import _ "embed"

// ReminderDefaultJSON is the default reminder-tab configuration, embedded at
// build time. Stored configurations are decoded on top of it.
//
//go:embed reminder/default.json
var ReminderDefaultJSON []byte
