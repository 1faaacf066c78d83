package basic

//canon:derive
type Point struct {
	X, Y int
}

// Label has no directive and is left alone.
type Label struct {
	Text string `canon:"intern"`
}
