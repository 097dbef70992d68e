package notificationrepo

import "errors"

var ErrAlreadyExists = errors.New("notification already exists")
