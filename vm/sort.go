package vm

import "context"

// Less reports whether a orders before b. It may run user code, suspend, or
// fail; an error aborts the sort and is returned unchanged.
type Less func(ctx context.Context, a, b Value) (bool, error)

// QuickSort sorts s in place. It is not stable. Every comparison calls less
// exactly once, in the order the partitioning performs them.
func QuickSort(ctx context.Context, s []Value, less Less) error {
	if len(s) < 2 {
		return nil
	}
	return quickSort(ctx, s, 0, len(s)-1, less)
}

func quickSort(ctx context.Context, s []Value, lo, hi int, less Less) error {
	if lo >= hi {
		return nil
	}
	pivot := s[lo+(hi-lo)/2]
	i, j := lo, hi
	for i <= j {
		for i <= hi {
			ok, err := less(ctx, s[i], pivot)
			if err != nil {
				return err
			}
			if !ok {
				break
			}
			i++
		}
		for j >= lo {
			ok, err := less(ctx, pivot, s[j])
			if err != nil {
				return err
			}
			if !ok {
				break
			}
			j--
		}
		if i <= j {
			s[i], s[j] = s[j], s[i]
			i++
			j--
		}
	}
	// A predicate that is not a strict order can leave one side empty.
	if j >= hi {
		j = hi - 1
	}
	if i <= lo {
		i = lo + 1
	}
	if err := quickSort(ctx, s, lo, j, less); err != nil {
		return err
	}
	return quickSort(ctx, s, i, hi, less)
}

// InsertionSort sorts s in place, keeping elements that compare equal in
// their original order.
func InsertionSort(ctx context.Context, s []Value, less Less) error {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0; j-- {
			ok, err := less(ctx, s[j], s[j-1])
			if err != nil {
				return err
			}
			if !ok {
				break
			}
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
	return nil
}

// NaturalLess orders values with Compare.
func NaturalLess(_ context.Context, a, b Value) (bool, error) {
	c, err := Compare(a, b)
	return c < 0, err
}

// Reverse returns a predicate ordering values opposite to less.
func Reverse(less Less) Less {
	return func(ctx context.Context, a, b Value) (bool, error) {
		return less(ctx, b, a)
	}
}
