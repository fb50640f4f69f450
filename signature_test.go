package selfdep

import (
	"context"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

type sigOwner struct {
	tag int
}

func sigScale(o *sigOwner, mul *float64) float64 {
	if mul == nil {
		return float64(o.tag)
	}
	return float64(o.tag) * *mul
}

func TestSignatureOf_DefaultNames(t *testing.T) {
	sig, err := SignatureOf(func(ctx context.Context, a int, b string) int { return a })
	assert.NoError(t, err)

	params := sig.Params()
	assert.Len(t, params, 3)
	assert.Equal(t, "ctx", params[0].Name)
	assert.Equal(t, "arg1", params[1].Name)
	assert.Equal(t, "arg2", params[2].Name)
	assert.False(t, params[1].Injectable())
}

func TestSignatureOf_SuppliedNames(t *testing.T) {
	sig, err := SignatureOf(func(a, b float64) float64 { return a + b }, "base_1", "base_2")
	assert.NoError(t, err)

	p, ok := sig.Param("base_2")
	assert.True(t, ok)
	assert.Equal(t, reflect.TypeOf(float64(0)), p.Type)

	_, ok = sig.Param("base_3")
	assert.False(t, ok)
}

func TestSignatureOf_Errors(t *testing.T) {
	var se *SignatureError

	_, err := SignatureOf(42)
	assert.ErrorAs(t, err, &se)

	_, err = SignatureOf(nil)
	assert.ErrorAs(t, err, &se)

	_, err = SignatureOf(func(a int) int { return a }, "x", "y")
	assert.ErrorAs(t, err, &se)

	_, err = SignatureOf(func(a int) int { return a }, "self")
	assert.ErrorAs(t, err, &se)

	_, err = SignatureOf(func(a int) int { return a }, "ctx")
	assert.ErrorAs(t, err, &se)

	_, err = SignatureOf(func(a int) int { return a }, "")
	assert.ErrorAs(t, err, &se)

	_, err = SignatureOf(func(a, b int) int { return a }, "n", "n")
	assert.ErrorAs(t, err, &se)
}

func TestParamNames_DefaultCollision(t *testing.T) {
	var se *SignatureError

	// Naming only the first of three parameters "arg3" would duplicate
	// the default generated for the third; the declaration is rejected
	// instead of leaving one of the two unbindable.
	_, err := SignatureOf(func(a, b, c int) int { return a }, "arg3")
	assert.ErrorAs(t, err, &se)

	d := SelfDependent(func(o *sigOwner, a, b, c int) int { return a + b + c },
		WithParamNames("arg3"))
	_, err = d.ResolveWithError(&sigOwner{})
	assert.ErrorAs(t, err, &se)
	assert.Error(t, d.Validate())

	// A name that lands on its own position's default stays legal.
	sig, err := SignatureOf(func(a, b int) int { return a }, "arg1")
	assert.NoError(t, err)
	p, ok := sig.Param("arg2")
	assert.True(t, ok)
	assert.Equal(t, reflect.TypeOf(0), p.Type)
}

func TestMethodSignature_RewritesSelf(t *testing.T) {
	d := SelfDependent(sigScale, WithParamNames("mul"))
	w, err := d.ResolveWithError(&sigOwner{})
	assert.NoError(t, err)

	params := w.Signature().Params()
	assert.Len(t, params, 2)

	assert.Equal(t, "self", params[0].Name)
	assert.True(t, params[0].Injectable())
	assert.Equal(t, reflect.TypeOf(&sigOwner{}), params[0].Type)

	// Without a factory, the owner type itself is the declared source.
	src := params[0].Source
	assert.NotNil(t, src)
	assert.Equal(t, reflect.TypeOf(&sigOwner{}), src.Producer)

	assert.Equal(t, "mul", params[1].Name)
	assert.False(t, params[1].Injectable())
}

func TestMethodSignature_FactorySource(t *testing.T) {
	factory := func(b1, b2 int) *sigOwner { return &sigOwner{tag: b1 + b2} }
	d := SelfDependent(sigScale, WithFactory(Depends(factory, "b1", "b2")), WithParamNames("mul"))

	w, err := d.ResolveWithError(&sigOwner{})
	assert.NoError(t, err)

	src := w.Signature().Params()[0].Source
	assert.NotNil(t, src)
	assert.Equal(t, reflect.ValueOf(factory).Pointer(), reflect.ValueOf(src.Producer).Pointer())
	assert.Equal(t, []string{"b1", "b2"}, src.Names)
}

func TestMethodSignature_CtxParams(t *testing.T) {
	method := func(o *sigOwner, ctx context.Context, n int) (int, error) { return n, nil }
	d := SelfDependent(method, WithParamNames("n"))
	w, err := d.ResolveWithError(&sigOwner{})
	assert.NoError(t, err)

	params := w.Signature().Params()
	assert.Equal(t, []string{"self", "ctx", "n"}, []string{params[0].Name, params[1].Name, params[2].Name})
	assert.Equal(t, contextType, params[1].Type)
}

func TestSignature_ParamsIsACopy(t *testing.T) {
	sig, err := SignatureOf(func(a int) int { return a }, "n")
	assert.NoError(t, err)

	params := sig.Params()
	params[0].Name = "mutated"

	p, ok := sig.Param("n")
	assert.True(t, ok)
	assert.Equal(t, "n", p.Name)
}

func TestSignature_String(t *testing.T) {
	d := SelfDependent(sigScale, WithParamNames("mul"))
	w, err := d.ResolveWithError(&sigOwner{})
	assert.NoError(t, err)

	assert.Equal(t,
		"(self *selfdep.sigOwner = Depends(*selfdep.sigOwner), mul *float64)",
		w.Signature().String())
}

func TestDependency_String(t *testing.T) {
	assert.Equal(t, "Depends(*selfdep.sigOwner)", Depends(reflect.TypeOf(&sigOwner{})).String())

	dep := Depends(func(n int) *sigOwner { return &sigOwner{tag: n} }, "n")
	assert.Equal(t, "Depends((int) *selfdep.sigOwner)", dep.String())
}
