package archive

import "os"

// Option configures [Extract] and [ExtractReader].
type Option func(*options)

type options struct {
	keepExisting bool
}

// WithKeepExisting leaves files that already exist at their target path
// untouched instead of overwriting them. Kept files are not reported as
// written.
func WithKeepExisting() Option {
	return func(o *options) {
		o.keepExisting = true
	}
}

func (o options) keep(target string) bool {
	if !o.keepExisting {
		return false
	}

	_, err := os.Lstat(target)
	return err == nil
}
