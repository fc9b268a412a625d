package orderbook

// priceIndex is a red-black tree of price levels, one per side. The better
// function defines priority: bids hand in greater-than, asks less-than, so
// the leftmost node is always the best price and an in-order walk yields
// levels best-first. Self-balancing keeps upsert/remove logarithmic even
// under sorted price insertion.
type priceIndex struct {
	root   *treeNode
	nil    *treeNode // shared sentinel leaf
	better func(a, b int64) bool
	size   int
}

type nodeColor uint8

const (
	red nodeColor = iota
	black
)

type treeNode struct {
	price  int64
	level  *priceLevel
	color  nodeColor
	left   *treeNode
	right  *treeNode
	parent *treeNode
}

func newPriceIndex(better func(a, b int64) bool) *priceIndex {
	sentinel := &treeNode{color: black}
	return &priceIndex{root: sentinel, nil: sentinel, better: better}
}

func (t *priceIndex) len() int { return t.size }

func (t *priceIndex) level(price int64) *priceLevel {
	n := t.searchNode(price)
	if n == t.nil {
		return nil
	}
	return n.level
}

// best returns the highest-priority level, or nil when the side is empty.
func (t *priceIndex) best() *priceLevel {
	if t.root == t.nil {
		return nil
	}
	return t.minNode(t.root).level
}

// walk visits levels best-first until fn returns false.
func (t *priceIndex) walk(fn func(*priceLevel) bool) {
	for n := t.minNode(t.root); n != t.nil; n = t.next(n) {
		if !fn(n.level) {
			return
		}
	}
}

// upsert returns the level at price, creating and inserting an empty one
// if none exists.
func (t *priceIndex) upsert(price int64) *priceLevel {
	y := t.nil
	x := t.root
	for x != t.nil {
		y = x
		switch {
		case t.better(price, x.price):
			x = x.left
		case t.better(x.price, price):
			x = x.right
		default:
			return x.level
		}
	}
	pl := &priceLevel{price: price}
	z := &treeNode{price: price, level: pl, color: red, left: t.nil, right: t.nil, parent: y}
	switch {
	case y == t.nil:
		t.root = z
	case t.better(price, y.price):
		y.left = z
	default:
		y.right = z
	}
	t.insertFixup(z)
	t.size++
	return pl
}

// remove deletes the level at price; no-op returning false if absent.
func (t *priceIndex) remove(price int64) bool {
	z := t.searchNode(price)
	if z == t.nil {
		return false
	}
	t.deleteNode(z)
	t.size--
	return true
}

func (t *priceIndex) searchNode(price int64) *treeNode {
	n := t.root
	for n != t.nil {
		switch {
		case t.better(price, n.price):
			n = n.left
		case t.better(n.price, price):
			n = n.right
		default:
			return n
		}
	}
	return t.nil
}

func (t *priceIndex) minNode(n *treeNode) *treeNode {
	if n == t.nil {
		return t.nil
	}
	for n.left != t.nil {
		n = n.left
	}
	return n
}

func (t *priceIndex) next(n *treeNode) *treeNode {
	if n.right != t.nil {
		return t.minNode(n.right)
	}
	p := n.parent
	for p != t.nil && n == p.right {
		n = p
		p = p.parent
	}
	return p
}

func (t *priceIndex) leftRotate(x *treeNode) {
	y := x.right
	x.right = y.left
	if y.left != t.nil {
		y.left.parent = x
	}
	y.parent = x.parent
	switch {
	case x.parent == t.nil:
		t.root = y
	case x == x.parent.left:
		x.parent.left = y
	default:
		x.parent.right = y
	}
	y.left = x
	x.parent = y
}

func (t *priceIndex) rightRotate(x *treeNode) {
	y := x.left
	x.left = y.right
	if y.right != t.nil {
		y.right.parent = x
	}
	y.parent = x.parent
	switch {
	case x.parent == t.nil:
		t.root = y
	case x == x.parent.right:
		x.parent.right = y
	default:
		x.parent.left = y
	}
	y.right = x
	x.parent = y
}

func (t *priceIndex) insertFixup(z *treeNode) {
	for z.parent.color == red {
		if z.parent == z.parent.parent.left {
			y := z.parent.parent.right
			if y.color == red {
				z.parent.color = black
				y.color = black
				z.parent.parent.color = red
				z = z.parent.parent
			} else {
				if z == z.parent.right {
					z = z.parent
					t.leftRotate(z)
				}
				z.parent.color = black
				z.parent.parent.color = red
				t.rightRotate(z.parent.parent)
			}
		} else {
			y := z.parent.parent.left
			if y.color == red {
				z.parent.color = black
				y.color = black
				z.parent.parent.color = red
				z = z.parent.parent
			} else {
				if z == z.parent.left {
					z = z.parent
					t.rightRotate(z)
				}
				z.parent.color = black
				z.parent.parent.color = red
				t.leftRotate(z.parent.parent)
			}
		}
	}
	t.root.color = black
}

func (t *priceIndex) transplant(u, v *treeNode) {
	switch {
	case u.parent == t.nil:
		t.root = v
	case u == u.parent.left:
		u.parent.left = v
	default:
		u.parent.right = v
	}
	v.parent = u.parent
}

func (t *priceIndex) deleteNode(z *treeNode) {
	y := z
	yColor := y.color
	var x *treeNode
	switch {
	case z.left == t.nil:
		x = z.right
		t.transplant(z, z.right)
	case z.right == t.nil:
		x = z.left
		t.transplant(z, z.left)
	default:
		y = t.minNode(z.right)
		yColor = y.color
		x = y.right
		if y.parent == z {
			x.parent = y
		} else {
			t.transplant(y, y.right)
			y.right = z.right
			y.right.parent = y
		}
		t.transplant(z, y)
		y.left = z.left
		y.left.parent = y
		y.color = z.color
	}
	if yColor == black {
		t.deleteFixup(x)
	}
}

func (t *priceIndex) deleteFixup(x *treeNode) {
	for x != t.root && x.color == black {
		if x == x.parent.left {
			w := x.parent.right
			if w.color == red {
				w.color = black
				x.parent.color = red
				t.leftRotate(x.parent)
				w = x.parent.right
			}
			if w.left.color == black && w.right.color == black {
				w.color = red
				x = x.parent
			} else {
				if w.right.color == black {
					w.left.color = black
					w.color = red
					t.rightRotate(w)
					w = x.parent.right
				}
				w.color = x.parent.color
				x.parent.color = black
				w.right.color = black
				t.leftRotate(x.parent)
				x = t.root
			}
		} else {
			w := x.parent.left
			if w.color == red {
				w.color = black
				x.parent.color = red
				t.rightRotate(x.parent)
				w = x.parent.left
			}
			if w.right.color == black && w.left.color == black {
				w.color = red
				x = x.parent
			} else {
				if w.left.color == black {
					w.right.color = black
					w.color = red
					t.leftRotate(w)
					w = x.parent.left
				}
				w.color = x.parent.color
				x.parent.color = black
				w.left.color = black
				t.rightRotate(x.parent)
				x = t.root
			}
		}
	}
	x.color = black
}
