package target

// reservedWords is the fixed 60-entry C reserved-word set the builder
// rejects identifiers against (spec.md §8.1 invariant 8), copied verbatim
// from original_source/codegen/codegen.c's RESERVED_KEYWORDS.
var reservedWords = map[string]bool{
	"alignas": true, "alignof": true, "auto": true, "bool": true,
	"break": true, "case": true, "char": true, "const": true,
	"constexpr": true, "continue": true, "default": true, "do": true,
	"double": true, "else": true, "enum": true, "extern": true,
	"false": true, "float": true, "for": true, "goto": true,
	"if": true, "inline": true, "int": true, "long": true,
	"nullptr": true, "register": true, "restrict": true, "return": true,
	"short": true, "signed": true, "sizeof": true, "static": true,
	"static_assert": true, "struct": true, "switch": true, "thread_local": true,
	"true": true, "typedef": true, "typeof": true, "typeof_unqual": true,
	"union": true, "unsigned": true, "void": true, "volatile": true,
	"while": true, "_Alignas": true, "_Alignof": true, "_Atomic": true,
	"_BitInt": true, "_Bool": true, "_Complex": true, "_Decimal128": true,
	"_Decimal32": true, "_Decimal64": true, "_Generic": true, "_Imaginary": true,
	"_Noreturn": true, "_Static_assert": true, "_Thread_local": true, "NULL": true,
}

// IsReserved reports whether name collides with the output language's
// reserved-word set.
func IsReserved(name string) bool {
	return reservedWords[name]
}
