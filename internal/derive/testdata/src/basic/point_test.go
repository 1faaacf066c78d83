package basic

//canon:derive
type fixture struct {
	A int
}
