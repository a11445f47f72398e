package nota

// Version is the application version. The first two components drive the
// on-disk schema generation; see pkg/db.
const Version = "0.8.1"

// VersionTriple is Version split into its numeric components.
var VersionTriple = [3]int{0, 8, 1}
