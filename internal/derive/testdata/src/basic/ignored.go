//go:build ignore

package basic

//canon:derive
type ignored struct {
	A int
}
