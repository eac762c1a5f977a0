package bridge

import (
	"errors"

	depoterrors "github.com/jrsteele09/depot-client/internal/errors"
)

var (
	ErrUnavailable = depoterrors.ErrBridgeUnavailable
	ErrShell       = errors.New("host shell error")
)
