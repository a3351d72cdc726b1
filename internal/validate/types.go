// SPDX-License-Identifier: MIT
package validate

// LogLevels lists the level names zerolog accepts from configuration.
var LogLevels = []string{"trace", "debug", "info", "warn", "error"}
