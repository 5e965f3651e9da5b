package logginglevel

import "go.uber.org/zap"

// Level is shared between the logger set up in main()
// and the --debug flag handling in the root command.
var Level = zap.NewAtomicLevelAt(zap.InfoLevel)
