package sudoku

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
)

// ReadPuzzleFile loads the whitespace-separated integer puzzle format and
// returns the one-line puzzle string. The header is two integers; the first
// is the box order when the file then holds order^4 cell values, or the unit
// size when it holds size^2. The second header integer is ignored. Cell
// values are row-major, -1 for a blank.
func ReadPuzzleFile(name string) (string, error) {
	f, err := os.Open(name)
	if err != nil {
		return "", fmt.Errorf("could not open puzzle file: %w", err)
	}
	defer f.Close()

	var nums []int
	scanner := bufio.NewScanner(f)
	scanner.Split(bufio.ScanWords)
	for scanner.Scan() {
		n, err := strconv.Atoi(scanner.Text())
		if err != nil {
			return "", fmt.Errorf("%w: bad integer %q in %s", ErrInvalidPuzzle, scanner.Text(), name)
		}
		nums = append(nums, n)
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	if len(nums) < 3 {
		return "", fmt.Errorf("%w: %s holds no cell values", ErrInvalidPuzzle, name)
	}

	header := nums[0]
	values := nums[2:]

	var size int
	switch {
	case header > 0 && len(values) == header*header*header*header:
		size = header * header
	case header > 0 && len(values) == header*header:
		size = header
	default:
		return "", fmt.Errorf("%w: %s header %d does not match %d cell values",
			ErrInvalidPuzzle, name, header, len(values))
	}

	order := int(math.Sqrt(float64(size)))
	out := make([]byte, len(values))
	for i, v := range values {
		switch {
		case v == -1:
			out[i] = '.'
		case v < 1 || v > size:
			return "", fmt.Errorf("%w: cell value %d out of range 1..%d", ErrInvalidPuzzle, v, size)
		case order == 3 && size == 9:
			out[i] = byte('1' + v - 1)
		case size == 12 || size == 16:
			if v < 11 {
				out[i] = byte('0' + v - 1)
			} else {
				out[i] = byte('a' + v - 11)
			}
		case size == 6:
			out[i] = byte('1' + v - 1)
		default:
			out[i] = byte('a' + v - 1)
		}
	}
	return string(out), nil
}
