package plan

// Target and archive names.
const (
	CurveName     = "secp256k1"
	ConsensusName = "dogecoinconsensus"
)

// DefaultRoot is the vendored source tree, relative to the project root.
const DefaultRoot = "depend/dogecoin/src"

// SourceGroup is a named run of consensus sources compiled in order.
type SourceGroup struct {
	Name  string
	Files []string
}

var curveIncludes = []string{
	"secp256k1/include",
	"secp256k1/src",
}

var curveSources = []string{
	"secp256k1/src/precomputed_ecmult_gen.c",
	"secp256k1/src/precomputed_ecmult.c",
	"secp256k1/src/secp256k1.c",
}

// Tuning constants and the optional modules. pubkey.cpp in the consensus
// target needs ellswift and recovery.
var curveDefines = []Define{
	{Name: "ECMULT_WINDOW_SIZE", Value: "15"},
	{Name: "ECMULT_GEN_PREC_BITS", Value: "4"},
	{Name: "ENABLE_MODULE_SCHNORRSIG", Value: "1"},
	{Name: "ENABLE_MODULE_EXTRAKEYS", Value: "1"},
	{Name: "ENABLE_MODULE_ELLSWIFT", Value: "1"},
	{Name: "ENABLE_MODULE_RECOVERY", Value: "1"},
}

var consensusIncludes = []string{
	".",
	"obj",
	"secp256k1/include",
	"consensus",
	"crypto",
	"primitives",
	"script",
	"config",
}

// ConsensusGroups lists the consensus library sources by subsystem.
var ConsensusGroups = []SourceGroup{
	{Name: "crypto", Files: []string{
		"crypto/aes.cpp",
		"crypto/hmac_sha256.cpp",
		"crypto/hmac_sha512.cpp",
		"crypto/ripemd160.cpp",
		"crypto/scrypt.cpp",
		"crypto/sha1.cpp",
		"crypto/sha256.cpp",
		"crypto/sha512.cpp",
	}},
	{Name: "arith", Files: []string{"arith_uint256.cpp"}},
	{Name: "merkle", Files: []string{"consensus/merkle.cpp", "hash.cpp"}},
	{Name: "primitives", Files: []string{
		"primitives/block.cpp",
		"primitives/pureheader.cpp",
		"primitives/transaction.cpp",
	}},
	{Name: "pubkey", Files: []string{"pubkey.cpp"}},
	{Name: "script", Files: []string{
		"script/bitcoinconsensus.cpp",
		"script/interpreter.cpp",
		"script/script.cpp",
		"script/script_error.cpp",
		"uint256.cpp",
		"utilstrencodings.cpp",
	}},
}
