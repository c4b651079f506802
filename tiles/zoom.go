package tiles

/*
Zoom 	Map width (px) 	m / pixel
(on Equator) 	~ Scale
(at 96 dpi) 	Examples of
areas to represent
1 	512 	78 271.517 	1:295 million 	hemisphere
2 	1 024 	39 135.758 	1:147 million 	subcontinental area
3 	2 048 	19 567.879 	1:73 million 	largest country
4 	4 096 	9 783.939 	1:36 million
5 	8 192 	4 891.970 	1:18 million 	large African country
6 	16 384 	2 445.985 	1:9 million 	large European country
7 	32 768 	1 222.992 	1:4.6 million 	small country, US state
8 	65 536 	611.496 	1:2.3 million
9 	131 072 	305.748 	1:1.1 million 	wide area, large metropolitan area
10 	262 144 	152.874 	1:577 thousand 	metropolitan area
11 	524 288 	76.437 	1:288 thousand 	city
12 	1 048 576 	38.219 	1:144 thousand 	town, or city district
13 	2 097 152 	19.109 	1:72 thousand 	village, or suburb
14 	4 194 304 	9.555 	1:36 thousand
15 	8 388 608 	4.777 	1:18 thousand 	small road
16 	16 777 216 	2.389 	1:9 thousand 	street
17 	33 554 432 	1.194 	1:4.5 thousand 	block, park, addresses
18 	67 108 864 	0.597 	1:2.2 thousand 	some buildings, trees
19 	134 217 728 	0.299 	1:1.1 thousand 	local highway and crossing details
20 	268 435 456 	0.149 	1:564 	a mid-sized building
21 	536 870 912 	0.075 	1:282
22 	1 073 741 824 	0.037 	1:141
23 	2 147 483 648 	0.019 	1:70 	the finest imagery on offer
*/

// Zoom is a quadkey zoom level (a "level of detail").
// The full map raster at zoom z is a square 256<<z pixels on a side,
// so each +1 doubles the edge and quadruples the tile count.
type Zoom int

const (
	// MinZoom is the coarsest level the retriever will scan.
	// Level 0 (one tile for the whole world) exists in the projection
	// but is not addressable by a quadkey of non-zero length.
	MinZoom Zoom = 1

	// MaxZoom is the finest level the tile service publishes.
	MaxZoom Zoom = 23
)

func (z Zoom) Valid() bool {
	return z >= MinZoom && z <= MaxZoom
}
