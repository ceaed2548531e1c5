package handlers

import "errors"

var errMissingUser = errors.New("not authenticated")
