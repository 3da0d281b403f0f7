package fn

import "testing"

func TestCompose(t *testing.T) {
	double := func(x int) int { return x * 2 }
	toStr := func(x int) string {
		if x == 0 {
			return "zero"
		}
		return "nonzero"
	}
	f := Compose(double, toStr)
	if got := f(0); got != "zero" {
		t.Fatalf("Compose(double,toStr)(0) = %q, want zero", got)
	}
	if got := f(3); got != "nonzero" {
		t.Fatalf("Compose(double,toStr)(3) = %q, want nonzero", got)
	}
}

func TestAndOrNot(t *testing.T) {
	even := func(x int) bool { return x%2 == 0 }
	positive := func(x int) bool { return x > 0 }

	and := And[int](even, positive)
	or := Or[int](even, positive)
	not := Not[int](even)

	if and(4) != true || and(-4) != false || and(3) != false {
		t.Fatal("And did not behave as pointwise conjunction")
	}
	if or(3) != true || or(-4) != true || or(-3) != false {
		t.Fatal("Or did not behave as pointwise disjunction")
	}
	if not(4) != false || not(3) != true {
		t.Fatal("Not did not negate pointwise")
	}
}

func TestEq(t *testing.T) {
	a := func(x int) int { return x * 2 }
	b := func(x int) int { return x + x }
	eq := Eq[int](a, b)
	for _, x := range []int{0, 1, -5, 100} {
		if !eq(x) {
			t.Fatalf("Eq(a,b)(%d) = false, want true", x)
		}
	}
}

func TestConstIdentity(t *testing.T) {
	c := Const[int, string]("fixed")
	if c(1) != "fixed" || c(2) != "fixed" {
		t.Fatal("Const did not ignore its input")
	}
	if Identity(42) != 42 {
		t.Fatal("Identity did not return its input")
	}
}
