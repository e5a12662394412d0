package l10n

import (
	"fmt"
	"sync"

	"github.com/snapcore/go-gettext"
)

// Domain is the gettext text domain of propbind's messages.
const Domain = "propbind"

var (
	once   sync.Once
	locale gettext.Catalog
)

func catalog() gettext.Catalog {
	once.Do(func() {
		domain := gettext.TextDomain{Name: Domain}
		locale = domain.UserLocale()
	})
	return locale
}

// T localizes simple strings.
func T(str string, vars ...any) string {
	translation := catalog().Gettext(str)
	if len(vars) > 0 {
		translation = fmt.Sprintf(translation, vars...)
	}
	return translation
}

// TN localizes strings with plurals. n selects the plural form and is not
// passed to the format.
func TN(singular, plural string, n uint32, vars ...any) string {
	translation := catalog().NGettext(singular, plural, n)
	if len(vars) > 0 {
		translation = fmt.Sprintf(translation, vars...)
	}
	return translation
}
