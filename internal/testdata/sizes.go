package testdata

type Size struct {
	Name string
	N    int
}

// Sizes covers plaintexts from a fraction of a chunk up to a thousand chunks.
var Sizes []Size = []Size{
	{"1B", 1},
	{"64B", 64},
	{"16KiB", 16 * 1024},
	{"64KiB", 64 * 1024},
	{"1MiB", 1024 * 1024},
	{"16MiB", 16 * 1024 * 1024},
}
