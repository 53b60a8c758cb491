package effect

import (
	"fmt"
	"strings"
)

type Kind int

const (
	KindNone Kind = iota
	KindGrayscale
	KindBlur
	KindCannyEdge
	KindBrightnessContrast
)

var kindNames = map[Kind]string{
	KindNone:               "none",
	KindGrayscale:          "grayscale",
	KindBlur:               "blur",
	KindCannyEdge:          "canny",
	KindBrightnessContrast: "brightness-contrast",
}

// aliases accepted by ParseKind besides the canonical names
var kindAliases = map[string]Kind{
	"gray":                    KindGrayscale,
	"grey":                    KindGrayscale,
	"greyscale":               KindGrayscale,
	"gaussian":                KindBlur,
	"edge":                    KindCannyEdge,
	"canny-edge":              KindCannyEdge,
	"canny edge detection":    KindCannyEdge,
	"brightness & contrast":   KindBrightnessContrast,
	"brightness":              KindBrightnessContrast,
	"contrast":                KindBrightnessContrast,
	"bc":                      KindBrightnessContrast,
	"brightness_contrast":     KindBrightnessContrast,
	"brightness-and-contrast": KindBrightnessContrast,
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

func Kinds() []Kind {
	return []Kind{KindNone, KindGrayscale, KindBlur, KindCannyEdge, KindBrightnessContrast}
}

func ParseKind(s string) (Kind, error) {
	in := strings.ToLower(strings.TrimSpace(s))
	if in == "" {
		return KindNone, nil
	}
	for k, name := range kindNames {
		if name == in {
			return k, nil
		}
	}
	if k, ok := kindAliases[in]; ok {
		return k, nil
	}
	return KindNone, fmt.Errorf("unknown effect %q: %w", s, ErrInvalidParam)
}

// Effect is one of None, Grayscale, Blur, CannyEdge or BrightnessContrast.
// The set is closed: the unexported method keeps other packages from adding variants.
type Effect interface {
	Kind() Kind
	Name() string
	sealed()
}

type None struct{}

type Grayscale struct{}

type Blur struct {
	KSize int
}

type CannyEdge struct {
	Threshold1 int
	Threshold2 int
}

type BrightnessContrast struct {
	Alpha float64
	Beta  int
}

func (None) Kind() Kind               { return KindNone }
func (Grayscale) Kind() Kind          { return KindGrayscale }
func (Blur) Kind() Kind               { return KindBlur }
func (CannyEdge) Kind() Kind          { return KindCannyEdge }
func (BrightnessContrast) Kind() Kind { return KindBrightnessContrast }

func (e None) Name() string               { return e.Kind().String() }
func (e Grayscale) Name() string          { return e.Kind().String() }
func (e Blur) Name() string               { return e.Kind().String() }
func (e CannyEdge) Name() string          { return e.Kind().String() }
func (e BrightnessContrast) Name() string { return e.Kind().String() }

func (None) sealed()               {}
func (Grayscale) sealed()          {}
func (Blur) sealed()               {}
func (CannyEdge) sealed()          {}
func (BrightnessContrast) sealed() {}

// Describe returns a short label with the effect parameters, used for captions and logs.
func Describe(e Effect) string {
	switch v := e.(type) {
	case nil:
		return KindNone.String()
	case Blur:
		return fmt.Sprintf("%s(ksize=%d)", v.Name(), v.KSize)
	case CannyEdge:
		return fmt.Sprintf("%s(threshold1=%d, threshold2=%d)", v.Name(), v.Threshold1, v.Threshold2)
	case BrightnessContrast:
		return fmt.Sprintf("%s(alpha=%.2f, beta=%d)", v.Name(), v.Alpha, v.Beta)
	default:
		return e.Name()
	}
}
