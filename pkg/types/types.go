package types

// Vec3 is a direction in world space. Components are not normalized.
type Vec3 struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z"`
}

// Neg returns the component-wise negation of v
func (v Vec3) Neg() Vec3 {
	return Vec3{X: -v.X, Y: -v.Y, Z: -v.Z}
}

// Point3 is a position in world space
type Point3 struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
	Z float32 `json:"z"`
}

// Point2 is a position in image space
type Point2 struct {
	X float32 `json:"x"`
	Y float32 `json:"y"`
}

// Matrix4 is a 4x4 float32 matrix indexed as [row][column]
type Matrix4 [4][4]float32

// Identity4 returns the 4x4 identity matrix
func Identity4() Matrix4 {
	return Matrix4{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
}

// Size is a pixel size
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// SensorSize is a physical camera sensor size in millimetres
type SensorSize struct {
	Width  float64 `json:"width" mapstructure:"width"`
	Height float64 `json:"height" mapstructure:"height"`
}

// FullFrame is the 36x24 mm sensor of 35 mm still cameras
var FullFrame = SensorSize{Width: 36, Height: 24}
