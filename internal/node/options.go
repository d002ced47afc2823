package node

import (
	"github.com/agentx-labs/platformview/internal/fileobj"
	"github.com/agentx-labs/platformview/internal/i18n"
	"golang.org/x/text/message"
)

// Option configures a PlatformNode.
type Option func(*options)

type options struct {
	printer *message.Printer
	files   FileResolver
}

func defaultOptions() options {
	return options{files: fileobj.Resolver{}}
}

// WithPrinter fixes the printer used for localized labels. Without it the
// process-wide printer of package i18n is used at query time.
func WithPrinter(p *message.Printer) Option {
	return func(o *options) { o.printer = p }
}

// WithFileResolver replaces the filesystem resolver used for classpath
// entries.
func WithFileResolver(r FileResolver) Option {
	return func(o *options) { o.files = r }
}

func (o *options) text(key string) string {
	if o.printer != nil {
		return o.printer.Sprintf(key)
	}
	return i18n.Text(key)
}
