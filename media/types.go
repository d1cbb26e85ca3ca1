// media/types.go
package media

type AssetType string

const (
	AssetTypeArtwork AssetType = "artwork" // full-size artwork images
	AssetTypeBlur    AssetType = "blur"    // low-res placeholder images
	AssetTypeProfile AssetType = "profile" // artist profile / about imagery
	AssetTypeUnknown AssetType = "unknown"
)
