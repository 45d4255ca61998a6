package proctree

import (
	"github.com/core-tools/hsu-proctree/pkg/enumerate"
	"github.com/core-tools/hsu-proctree/pkg/errors"
	"github.com/core-tools/hsu-proctree/pkg/logging"
	"github.com/core-tools/hsu-proctree/pkg/signaling"
)

// NewDefaultKiller wires the running platform's enumerator, signal sender and
// native tree killer
func NewDefaultKiller(options Options, logger logging.Logger) (*Killer, error) {
	return NewKillerForMethod(enumerate.MethodAuto, options, logger)
}

// NewKillerForMethod is NewDefaultKiller with an explicit enumeration method.
// Missing enumeration is tolerated when the platform can kill trees natively;
// BuildTree and KillChildrenOnly then fail with an unsupported platform error.
func NewKillerForMethod(method enumerate.Method, options Options, logger logging.Logger) (*Killer, error) {
	logger = logging.OrNop(logger)

	if err := ValidateOptions(options); err != nil {
		return nil, err
	}

	native := signaling.NewNativeTreeKiller()

	enumerator, err := enumerate.New(method)
	if err != nil {
		if !errors.IsUnsupportedPlatformError(err) || native == nil {
			return nil, err
		}
		logger.Debugf("No process enumerator, using native tree kill only: %v", err)
		enumerator = nil
	}

	return NewKiller(enumerator, signaling.NewSender(), native, options, logger), nil
}
