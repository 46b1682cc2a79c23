package tokenizer

// namedCharRefs is a representative subset of the WHATWG named character
// reference table (the full table has ~2,231 entries; this is a
// high-frequency subset). amp, lt, gt, quot, nbsp, copy and reg are
// recorded both with and without their trailing semicolon, since the
// longest-match rule (HTML5 §12.2.5.1) depends on that; every other entry
// is recorded with the semicolon only. See DESIGN.md for
// why a full generated table was not vendored.
var namedCharRefs = map[string][]rune{
	"amp":     {'&'},
	"amp;":    {'&'},
	"lt":      {'<'},
	"lt;":     {'<'},
	"gt":      {'>'},
	"gt;":     {'>'},
	"quot":    {'"'},
	"quot;":   {'"'},
	"apos;":   {'\''},
	"nbsp;":   {0x00A0},
	"nbsp":    {0x00A0},
	"copy;":   {0x00A9},
	"copy":    {0x00A9},
	"reg;":    {0x00AE},
	"reg":     {0x00AE},
	"trade;":  {0x2122},
	"hellip;": {0x2026},
	"mdash;":  {0x2014},
	"ndash;":  {0x2013},
	"lsquo;":  {0x2018},
	"rsquo;":  {0x2019},
	"ldquo;":  {0x201C},
	"rdquo;":  {0x201D},
	"laquo;":  {0x00AB},
	"raquo;":  {0x00BB},
	"times;":  {0x00D7},
	"divide;": {0x00F7},
	"euro;":   {0x20AC},
	"pound;":  {0x00A3},
	"yen;":    {0x00A5},
	"cent;":   {0x00A2},
	"sect;":   {0x00A7},
	"para;":   {0x00B6},
	"middot;": {0x00B7},
	"deg;":    {0x00B0},
	"plusmn;": {0x00B1},
	"sup2;":   {0x00B2},
	"sup3;":   {0x00B3},
	"frac12;": {0x00BD},
	"frac14;": {0x00BC},
	"frac34;": {0x00BE},
	"aacute;": {0x00E1},
	"eacute;": {0x00E9},
	"iacute;": {0x00ED},
	"oacute;": {0x00F3},
	"uacute;": {0x00FA},
	"ntilde;": {0x00F1},
	"ccedil;": {0x00E7},
	"szlig;":  {0x00DF},
	"auml;":   {0x00E4},
	"ouml;":   {0x00F6},
	"uuml;":   {0x00FC},
	"Auml;":   {0x00C4},
	"Ouml;":   {0x00D6},
	"Uuml;":   {0x00DC},
	"alpha;":  {0x03B1},
	"beta;":   {0x03B2},
	"gamma;":  {0x03B3},
	"delta;":  {0x03B4},
	"pi;":     {0x03C0},
	"sigma;":  {0x03C3},
	"omega;":  {0x03C9},
	"infin;":  {0x221E},
	"ne;":     {0x2260},
	"le;":     {0x2264},
	"ge;":     {0x2265},
	"larr;":   {0x2190},
	"uarr;":   {0x2191},
	"rarr;":   {0x2192},
	"darr;":   {0x2193},
	"harr;":   {0x2194},
	"forall;":  {0x2200},
	"part;":    {0x2202},
	"exist;":   {0x2203},
	"empty;":   {0x2205},
	"isin;":    {0x2208},
	"notin;":   {0x2209},
	"prod;":    {0x220F},
	"sum;":     {0x2211},
	"minus;":   {0x2212},
	"lowast;":  {0x2217},
	"radic;":   {0x221A},
	"prop;":    {0x221D},
	"ang;":     {0x2220},
	"and;":     {0x2227},
	"or;":      {0x2228},
	"cap;":     {0x2229},
	"cup;":     {0x222A},
	"int;":     {0x222B},
	"there4;":  {0x2234},
	"sim;":     {0x223C},
	"cong;":    {0x2245},
	"asymp;":   {0x2248},
	"equiv;":   {0x2261},
	"sub;":     {0x2282},
	"sup;":     {0x2283},
	"nsub;":    {0x2284},
	"sube;":    {0x2286},
	"supe;":    {0x2287},
	"oplus;":   {0x2295},
	"otimes;":  {0x2297},
	"perp;":    {0x22A5},
	"sdot;":    {0x22C5},
	"NotEqual;": {0x2260},
}

// maxNamedCharRefLen bounds the longest-match scan below.
const maxNamedCharRefLen = 32

// matchNamedCharRef implements HTML5 §12.2.5.1's longest-match rule: it tries
// progressively shorter prefixes of the upcoming characters (up to
// maxNamedCharRefLen) against the table and returns the longest one that
// hits, along with how many source characters it consumed.
//
// It takes a peek function rather than a string so the tokenizer can feed
// it directly from the input stream without forcing a full look-ahead
// buffer materialization up front; peek must return (0, false) once no
// more characters are available.
func matchNamedCharRef(peek func(int) (rune, bool)) (runes []rune, consumed int, ok bool) {
	var buf []rune
	for i := 0; i < maxNamedCharRefLen; i++ {
		r, has := peek(i)
		if !has {
			break
		}
		buf = append(buf, r)
	}
	for n := len(buf); n > 0; n-- {
		if v, found := namedCharRefs[string(buf[:n])]; found {
			return v, n, true
		}
	}
	return nil, 0, false
}

// windows1252Overrides implements the numeric character reference
// remapping for C1 control code points 0x80-0x9F, per HTML5 §12.2.5.1.
var windows1252Overrides = map[rune]rune{
	0x80: 0x20AC, 0x82: 0x201A, 0x83: 0x0192, 0x84: 0x201E, 0x85: 0x2026,
	0x86: 0x2020, 0x87: 0x2021, 0x88: 0x02C6, 0x89: 0x2030, 0x8A: 0x0160,
	0x8B: 0x2039, 0x8C: 0x0152, 0x8E: 0x017D, 0x91: 0x2018, 0x92: 0x2019,
	0x93: 0x201C, 0x94: 0x201D, 0x95: 0x2022, 0x96: 0x2013, 0x97: 0x2014,
	0x98: 0x02DC, 0x99: 0x2122, 0x9A: 0x0161, 0x9B: 0x203A, 0x9C: 0x0153,
	0x9E: 0x017E, 0x9F: 0x0178,
}

// isNoncharacter reports whether r is a "noncharacter code point" per the
// Unicode standard, used by the numeric character reference end state's
// noncharacter-character-reference error check.
func isNoncharacter(r rune) bool {
	if r >= 0xFDD0 && r <= 0xFDEF {
		return true
	}
	switch r & 0xFFFE {
	case 0xFFFE:
		return true
	}
	return false
}

// isControlOtherThanASCIIWhitespace reports the class of control characters
// the spec flags as "control-character-reference" parse errors.
func isControlOtherThanASCIIWhitespace(r rune) bool {
	if r == 0x09 || r == 0x0A || r == 0x0C || r == 0x0D || r == 0x20 {
		return false
	}
	return (r >= 0x00 && r <= 0x1F) || (r >= 0x7F && r <= 0x9F)
}
