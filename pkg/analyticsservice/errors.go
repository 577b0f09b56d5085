package analyticsservice

import "errors"

var errNoDatabase = errors.New("service was created without a database; enable Store in the options")
