package config

var defaultRoster = []map[string]any{
	{"id": "p0", "number": "0", "name": "Felipe"},
	{"id": "p1", "number": "1", "name": "Léo"},
	{"id": "p2", "number": "3", "name": "Papa"},
	{"id": "p3", "number": "4", "name": "Miguel"},
	{"id": "p4", "number": "5", "name": "Edson"},
	{"id": "p5", "number": "6", "name": "Armando"},
	{"id": "p6", "number": "7", "name": "Gabriel"},
	{"id": "p7", "number": "8", "name": "Azzi"},
	{"id": "p8", "number": "9", "name": "Diego"},
	{"id": "p9", "number": "10", "name": "Loureiro"},
	{"id": "p10", "number": "11", "name": "Bernardo"},
	{"id": "p11", "number": "11", "name": "Fábio"},
	{"id": "p12", "number": "12", "name": "Breno"},
	{"id": "p13", "number": "14", "name": "Menezes"},
	{"id": "p14", "number": "15", "name": "Midão"},
	{"id": "p15", "number": "16", "name": "Luiz"},
	{"id": "p16", "number": "17", "name": "Cauã"},
	{"id": "p17", "number": "19", "name": "Guilherme"},
	{"id": "p18", "number": "22", "name": "PH"},
	{"id": "p19", "number": "22", "name": "Enzo"},
	{"id": "p20", "number": "45", "name": "Rempto"},
	{"id": "p21", "number": "99", "name": "Breedveld"},
}

// opposing formation on a landscape surface
var defaultNormalFormation = []map[string]any{
	{"top": "50%", "left": "88%"},
	{"top": "30%", "left": "80%"},
	{"top": "70%", "left": "80%"},
	{"top": "25%", "left": "65%"},
	{"top": "50%", "left": "65%"},
	{"top": "75%", "left": "65%"},
	{"top": "50%", "left": "55%"},
}

// opposing formation while the surface is shown rotated
var defaultRotatedFormation = []map[string]any{
	{"top": "50%", "left": "11%"},
	{"top": "30%", "left": "20%"},
	{"top": "70%", "left": "20%"},
	{"top": "25%", "left": "35%"},
	{"top": "50%", "left": "35%"},
	{"top": "75%", "left": "35%"},
	{"top": "50%", "left": "45%"},
}
