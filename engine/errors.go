package engine

import "errors"

var errMissingInstanceID = errors.New("response has no processInstanceId")
