package wasm

// Features is a bitset of optional Wasm proposals this runtime can enable or disable per
// RuntimeConfig (SPEC_FULL.md's Ambient Stack / Configuration section). The validator consults it
// to reject opcodes and types belonging to a disabled proposal.
type Features uint32

const (
	FeatureSignExtensionOps Features = 1 << iota
	FeatureMultiValue
	FeatureBulkMemoryOperations
	FeatureReferenceTypes
	FeatureSIMD
	FeatureThreads
	FeatureTailCall
	FeatureNonTrappingFloatToIntConversion
)

// FeaturesMVP is the empty set: the WebAssembly 1.0 / MVP feature surface with none of the later
// proposals enabled.
const FeaturesMVP Features = 0

// FeaturesAll enables every proposal this runtime implements.
const FeaturesAll Features = FeatureSignExtensionOps | FeatureMultiValue | FeatureBulkMemoryOperations |
	FeatureReferenceTypes | FeatureSIMD | FeatureThreads | FeatureTailCall | FeatureNonTrappingFloatToIntConversion

// IsEnabled reports whether all bits of f are set.
func (fs Features) IsEnabled(f Features) bool { return fs&f == f }

// With returns fs with f set.
func (fs Features) With(f Features) Features { return fs | f }

// Without returns fs with f cleared.
func (fs Features) Without(f Features) Features { return fs &^ f }

// names used for error messages when a disabled feature is required by a module.
var featureNames = map[Features]string{
	FeatureSignExtensionOps:                "sign-extension-ops",
	FeatureMultiValue:                      "multi-value",
	FeatureBulkMemoryOperations:            "bulk-memory-operations",
	FeatureReferenceTypes:                  "reference-types",
	FeatureSIMD:                            "simd",
	FeatureThreads:                         "threads",
	FeatureTailCall:                        "tail-call",
	FeatureNonTrappingFloatToIntConversion: "nontrapping-float-to-int-conversion",
}

func (f Features) String() string {
	if name, ok := featureNames[f]; ok {
		return name
	}
	return "unknown feature"
}
