package selfdep

import (
	"context"
	"fmt"
)

func ExampleSelfDependent() {
	d := SelfDependent(calcValue, WithParamNames("mul"))
	w := d.Resolve(newCalc(6))

	res, _ := w.Call(context.Background(), Args{"mul": ptr(7.0)})
	fmt.Println(res)
	// Output: 42
}

func ExampleWrapper_Signature() {
	d := SelfDependent(calcValue,
		WithFactory(Depends(makeCalc, "base_1", "base_2")),
		WithParamNames("mul"))
	w, _ := d.ResolveWithError(nil)

	fmt.Println(w.Signature())
	// Output: (self *selfdep.calc = Depends((float64, float64) *selfdep.calc), mul *float64)
}

func ExampleWrapper_Func() {
	w := SelfDependent(calcValue, WithParamNames("mul")).Resolve(newCalc(6))
	fn := w.Func().(func(*float64) float64)

	fmt.Println(fn(nil))
	fmt.Println(fn(ptr(7.0)))
	// Output:
	// 6
	// 42
}
