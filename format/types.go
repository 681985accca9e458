package format

type (
	// Kind is the value kind a namespace carries, which also decides how a
	// feature definition over it is folded into the index space.
	Kind uint8
	// ValueType identifies the active shape of a raw or hashed value.
	ValueType uint8
	// CompressionType identifies the payload compression of a vector blob.
	CompressionType uint8
)

const (
	KindCategorical Kind = 0x1 // KindCategorical values are ids; each contributes weight 1.0.
	KindNumerical   Kind = 0x2 // KindNumerical values carry an explicit float64 weight.
)

const (
	TypeSingleCategorical        ValueType = 0x1 // one int32 id
	TypeCategoricals             ValueType = 0x2 // list of int32 ids
	TypeSingleNumerical          ValueType = 0x3 // one float64
	TypeCategoricalsToNumericals ValueType = 0x4 // parallel int32 ids and float64 values
	TypeSingleString             ValueType = 0x5 // one string
	TypeStrings                  ValueType = 0x6 // list of strings
	TypeStringsToNumericals      ValueType = 0x7 // parallel strings and float64 values
)

const (
	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.
)

func (k Kind) String() string {
	switch k {
	case KindCategorical:
		return "categorical"
	case KindNumerical:
		return "numerical"
	default:
		return "unknown"
	}
}

// ParseKind parses the lower-case kind name used in configuration files.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "categorical":
		return KindCategorical, true
	case "numerical":
		return KindNumerical, true
	default:
		return 0, false
	}
}

func (v ValueType) String() string {
	switch v {
	case TypeSingleCategorical:
		return "SingleCategorical"
	case TypeCategoricals:
		return "Categoricals"
	case TypeSingleNumerical:
		return "SingleNumerical"
	case TypeCategoricalsToNumericals:
		return "CategoricalsToNumericals"
	case TypeSingleString:
		return "SingleString"
	case TypeStrings:
		return "Strings"
	case TypeStringsToNumericals:
		return "StringsToNumericals"
	default:
		return "Unknown"
	}
}

// Kind returns the namespace kind a value of this type belongs to.
func (v ValueType) Kind() Kind {
	switch v {
	case TypeSingleNumerical, TypeCategoricalsToNumericals, TypeStringsToNumericals:
		return KindNumerical
	case TypeSingleCategorical, TypeCategoricals, TypeSingleString, TypeStrings:
		return KindCategorical
	default:
		return 0
	}
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

// ParseCompression parses a case-sensitive lower-case compression name.
func ParseCompression(s string) (CompressionType, bool) {
	switch s {
	case "none", "":
		return CompressionNone, true
	case "zstd":
		return CompressionZstd, true
	case "s2":
		return CompressionS2, true
	case "lz4":
		return CompressionLZ4, true
	default:
		return 0, false
	}
}
