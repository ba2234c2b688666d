package colormap

// plasma runs from yellow (near) to deep blue (far).
var plasma = Table{
	0xF0F921, 0xF0F724, 0xF1F525, 0xF1F426, 0xF2F227, 0xF3F027, 0xF3EE27, 0xF4ED27,
	0xF5EB27, 0xF5E926, 0xF6E826, 0xF6E626, 0xF7E425, 0xF7E225, 0xF8E125, 0xF8DF25,
	0xF9DD25, 0xF9DC24, 0xFADA24, 0xFAD824, 0xFBD724, 0xFBD524, 0xFBD324, 0xFCD225,
	0xFCD025, 0xFCCE25, 0xFCCD25, 0xFDCB26, 0xFDCA26, 0xFDC827, 0xFDC627, 0xFDC527,
	0xFDC328, 0xFDC229, 0xFEC029, 0xFEBE2A, 0xFEBD2A, 0xFEBB2B, 0xFEBA2C, 0xFEB82C,
	0xFEB72D, 0xFDB52E, 0xFDB42F, 0xFDB22F, 0xFDB130, 0xFDAF31, 0xFDAE32, 0xFDAC33,
	0xFDAB33, 0xFCA934, 0xFCA835, 0xFCA636, 0xFCA537, 0xFCA338, 0xFBA238, 0xFBA139,
	0xFB9F3A, 0xFA9E3B, 0xFA9C3C, 0xFA9B3D, 0xF99A3E, 0xF9983E, 0xF9973F, 0xF89540,
	0xF89441, 0xF79342, 0xF79143, 0xF79044, 0xF68F44, 0xF68D45, 0xF58C46, 0xF58B47,
	0xF48948, 0xF48849, 0xF3874A, 0xF3854B, 0xF2844B, 0xF1834C, 0xF1814D, 0xF0804E,
	0xF07F4F, 0xEF7E50, 0xEF7C51, 0xEE7B51, 0xED7A52, 0xED7953, 0xEC7754, 0xEB7655,
	0xEB7556, 0xEA7457, 0xE97257, 0xE97158, 0xE87059, 0xE76F5A, 0xE76E5B, 0xE66C5C,
	0xE56B5D, 0xE56A5D, 0xE4695E, 0xE3685F, 0xE26660, 0xE26561, 0xE16462, 0xE06363,
	0xDF6263, 0xDE6164, 0xDE5F65, 0xDD5E66, 0xDC5D67, 0xDB5C68, 0xDA5B69, 0xDA5A6A,
	0xD9586A, 0xD8576B, 0xD7566C, 0xD6556D, 0xD5546E, 0xD5536F, 0xD45270, 0xD35171,
	0xD24F71, 0xD14E72, 0xD04D73, 0xCF4C74, 0xCE4B75, 0xCD4A76, 0xCC4977, 0xCC4778,
	0xCB4679, 0xCA457A, 0xC9447A, 0xC8437B, 0xC7427C, 0xC6417D, 0xC5407E, 0xC43E7F,
	0xC33D80, 0xC23C81, 0xC13B82, 0xC03A83, 0xBF3984, 0xBE3885, 0xBD3786, 0xBC3587,
	0xBB3488, 0xBA3388, 0xB83289, 0xB7318A, 0xB6308B, 0xB52F8C, 0xB42E8D, 0xB32C8E,
	0xB22B8F, 0xB12A90, 0xB02991, 0xAE2892, 0xAD2793, 0xAC2694, 0xAB2494, 0xAA2395,
	0xA82296, 0xA72197, 0xA62098, 0xA51F99, 0xA31E9A, 0xA21D9A, 0xA11B9B, 0xA01A9C,
	0x9E199D, 0x9D189D, 0x9C179E, 0x9A169F, 0x99159F, 0x9814A0, 0x9613A1, 0x9511A1,
	0x9410A2, 0x920FA3, 0x910EA3, 0x8F0DA4, 0x8E0CA4, 0x8D0BA5, 0x8B0AA5, 0x8A09A5,
	0x8808A6, 0x8707A6, 0x8606A6, 0x8405A7, 0x8305A7, 0x8104A7, 0x8004A8, 0x7E03A8,
	0x7D03A8, 0x7B02A8, 0x7A02A8, 0x7801A8, 0x7701A8, 0x7501A8, 0x7401A8, 0x7201A8,
	0x7100A8, 0x6F00A8, 0x6E00A8, 0x6C00A8, 0x6A00A8, 0x6900A8, 0x6700A8, 0x6600A7,
	0x6400A7, 0x6300A7, 0x6100A7, 0x6001A6, 0x5E01A6, 0x5C01A6, 0x5B01A5, 0x5901A5,
	0x5801A4, 0x5601A4, 0x5502A4, 0x5302A3, 0x5102A3, 0x5002A2, 0x4E02A2, 0x4C02A1,
	0x4B03A1, 0x4903A0, 0x48039F, 0x46039F, 0x44039E, 0x43039E, 0x41049D, 0x3F049C,
	0x3E049C, 0x3C049B, 0x3A049A, 0x38049A, 0x370499, 0x350498, 0x330597, 0x310597,
	0x2F0596, 0x2E0595, 0x2C0594, 0x2A0593, 0x280592, 0x260591, 0x240691, 0x220690,
	0x20068F, 0x1D068E, 0x1B068D, 0x19068C, 0x16078A, 0x130789, 0x100788, 0x0D0887,
}

// Plasma returns a copy of the built-in plasma table.
func Plasma() Table {
	t := make(Table, len(plasma))
	copy(t, plasma)
	return t
}
