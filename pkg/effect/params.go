package effect

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// Params is the string-keyed record used at transport boundaries
// (form values, bot commands, rpc requests).
type Params map[string]float64

const (
	ParamKSize      = "ksize"
	ParamThreshold1 = "threshold1"
	ParamThreshold2 = "threshold2"
	ParamAlpha      = "alpha"
	ParamBeta       = "beta"
)

// slider defaults of the interactive front end
const (
	DefaultKSize      = 5
	DefaultThreshold1 = 100
	DefaultThreshold2 = 200
	DefaultAlpha      = 1.0
	DefaultBeta       = 0
)

var kindParams = map[Kind][]string{
	KindNone:               nil,
	KindGrayscale:          nil,
	KindBlur:               {ParamKSize},
	KindCannyEdge:          {ParamThreshold1, ParamThreshold2},
	KindBrightnessContrast: {ParamAlpha, ParamBeta},
}

// ParamNames lists the keys FromParams reads for the kind.
func ParamNames(k Kind) []string {
	return kindParams[k]
}

func Defaults(k Kind) Effect {
	switch k {
	case KindGrayscale:
		return Grayscale{}
	case KindBlur:
		return Blur{KSize: DefaultKSize}
	case KindCannyEdge:
		return CannyEdge{Threshold1: DefaultThreshold1, Threshold2: DefaultThreshold2}
	case KindBrightnessContrast:
		return BrightnessContrast{Alpha: DefaultAlpha, Beta: DefaultBeta}
	default:
		return None{}
	}
}

// FromParams builds the variant for kind, taking missing keys from Defaults.
// Unknown keys are ignored. Values are not range checked beyond what fits an int.
func FromParams(k Kind, p Params) (Effect, error) {
	if _, ok := kindParams[k]; !ok {
		return nil, fmt.Errorf("unknown effect kind %d: %w", int(k), ErrInvalidParam)
	}

	for _, name := range kindParams[k] {
		if v, ok := p[name]; ok && (math.IsNaN(v) || math.IsInf(v, 0)) {
			return nil, fmt.Errorf("%s is not a finite number: %w", name, ErrInvalidParam)
		}
	}

	var err error
	integer := func(name string, def int) int {
		v, ok := p[name]
		if !ok {
			return def
		}
		r := math.Round(v)
		if r < math.MinInt || r >= -float64(math.MinInt) {
			err = fmt.Errorf("%s %v overflows int: %w", name, v, ErrInvalidParam)
			return def
		}
		return int(r)
	}

	var e Effect
	switch k {
	case KindBlur:
		e = Blur{KSize: integer(ParamKSize, DefaultKSize)}
	case KindCannyEdge:
		e = CannyEdge{
			Threshold1: integer(ParamThreshold1, DefaultThreshold1),
			Threshold2: integer(ParamThreshold2, DefaultThreshold2),
		}
	case KindBrightnessContrast:
		alpha, ok := p[ParamAlpha]
		e = BrightnessContrast{
			Alpha: lo.Ternary(ok, alpha, DefaultAlpha),
			Beta:  integer(ParamBeta, DefaultBeta),
		}
	default:
		e = Defaults(k)
	}

	if err != nil {
		return nil, err
	}
	return e, nil
}

// ParseParams reads "key=value" pairs, as typed in chat commands or query strings.
func ParseParams(pairs []string) (Params, error) {
	p := make(Params, len(pairs))
	for _, pair := range pairs {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		k, v, found := strings.Cut(pair, "=")
		if !found {
			return nil, fmt.Errorf("param %q is not key=value: %w", pair, ErrInvalidParam)
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, fmt.Errorf("param %q: %v: %w", k, err, ErrInvalidParam)
		}
		p[strings.ToLower(strings.TrimSpace(k))] = f
	}
	return p, nil
}

// ToParams is the inverse of FromParams.
func ToParams(e Effect) Params {
	switch v := e.(type) {
	case Blur:
		return Params{ParamKSize: float64(v.KSize)}
	case CannyEdge:
		return Params{ParamThreshold1: float64(v.Threshold1), ParamThreshold2: float64(v.Threshold2)}
	case BrightnessContrast:
		return Params{ParamAlpha: v.Alpha, ParamBeta: float64(v.Beta)}
	default:
		return Params{}
	}
}

// ParseSelection reads "<effect> [key=value ...]", e.g. "blur ksize=9" or
// "brightness & contrast alpha=1.5".
func ParseSelection(line string) (Effect, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, fmt.Errorf("missing effect name: %w", ErrInvalidParam)
	}

	// names may contain spaces, so the name is every field before the first key=value
	n := 0
	for n < len(fields) && !strings.Contains(fields[n], "=") {
		n++
	}

	kind, err := ParseKind(strings.Join(fields[:n], " "))
	if err != nil {
		return nil, err
	}

	params, err := ParseParams(fields[n:])
	if err != nil {
		return nil, err
	}

	return FromParams(kind, params)
}
