// internal/filter/coefficients.go
package filter

// firCoefficients is the 81-tap low-pass anti-aliasing filter run before
// decimation. It is symmetric about tap 40.
var firCoefficients = [FIRTapCount]float64{
	4.3579622275120866e-04, 2.7155425450406482e-04, 6.3039002645022389e-05,
	-1.9349227837935689e-04, -4.9526428865281219e-04, -8.2651441681321381e-04,
	-1.1538970332472540e-03, -1.4254746936265955e-03, -1.5744703111426981e-03,
	-1.5281041447445794e-03, -1.2208092333090719e-03, -6.1008312441271589e-04,
	3.0761698758506020e-04, 1.4840192333212628e-03, 2.8123077568332064e-03,
	4.1290616416556000e-03, 5.2263464670258821e-03, 5.8739882867061598e-03,
	5.8504032099208096e-03, 4.9787419333799775e-03, 3.1637974805960069e-03,
	4.2435139609132765e-04, -3.0844289197247210e-03, -7.0632027332701800e-03,
	-1.1078458037608587e-02, -1.4591395057493114e-02, -1.7004337345765962e-02,
	-1.7720830774014484e-02, -1.6213409845727566e-02, -1.2091458677988302e-02,
	-5.1609257765542595e-03, 4.5319860006883522e-03, 1.6679627700682677e-02,
	3.0718365411587255e-02, 4.5861875593064996e-02, 6.1160185621895728e-02,
	7.5579213982547147e-02, 8.8092930943210607e-02, 9.7778502396672365e-02,
	1.0390414346016495e-01, 1.0600000000000000e-01, 1.0390414346016495e-01,
	9.7778502396672365e-02, 8.8092930943210607e-02, 7.5579213982547147e-02,
	6.1160185621895728e-02, 4.5861875593064996e-02, 3.0718365411587255e-02,
	1.6679627700682677e-02, 4.5319860006883522e-03, -5.1609257765542595e-03,
	-1.2091458677988302e-02, -1.6213409845727566e-02, -1.7720830774014484e-02,
	-1.7004337345765962e-02, -1.4591395057493114e-02, -1.1078458037608587e-02,
	-7.0632027332701800e-03, -3.0844289197247210e-03, 4.2435139609132765e-04,
	3.1637974805960069e-03, 4.9787419333799775e-03, 5.8504032099208096e-03,
	5.8739882867061598e-03, 5.2263464670258821e-03, 4.1290616416556000e-03,
	2.8123077568332064e-03, 1.4840192333212628e-03, 3.0761698758506020e-04,
	-6.1008312441271589e-04, -1.2208092333090719e-03, -1.5281041447445794e-03,
	-1.5744703111426981e-03, -1.4254746936265955e-03, -1.1538970332472540e-03,
	-8.2651441681321381e-04, -4.9526428865281219e-04, -1.9349227837935689e-04,
	6.3039002645022389e-05, 2.7155425450406482e-04, 4.3579622275120866e-04,
}

// iirACoefficients holds the feedback taps a[1]..a[10] of each channel's
// resonator; a[0] is 1 and not stored.
var iirACoefficients = [ChannelCount][IIRACount]float64{
	{-5.9637727070164015e+00, 1.9125339333078248e+01, -4.0341474540744173e+01, 6.1537466875368821e+01, -7.0019717951472188e+01, 6.0298814235238872e+01, -3.8733792862566290e+01, 1.7993533279581058e+01, -5.4979061224867651e+00, 9.0332828533799547e-01},
	{-4.6377947119071443e+00, 1.3502215749461572e+01, -2.6155952405269755e+01, 3.8589668330738348e+01, -4.3038990303252632e+01, 3.7812927599537133e+01, -2.5113598088113793e+01, 1.2703182701888094e+01, -4.2755083391143520e+00, 9.0332828533800291e-01},
	{-3.0591317915750960e+00, 8.6417489609637634e+00, -1.4278790253808875e+01, 2.1302268283304372e+01, -2.2193853972079314e+01, 2.0873499791105537e+01, -1.3709764520609468e+01, 8.1303553577932188e+00, -2.8201643879900726e+00, 9.0332828533800769e-01},
	{-1.4071749185996747e+00, 5.6904141470697471e+00, -5.7374718273676217e+00, 1.1958028362868873e+01, -8.5435280598354382e+00, 1.1717345583835918e+01, -5.5088290876998407e+00, 5.3536787286077372e+00, -1.2972519209655518e+00, 9.0332828533799414e-01},
	{8.2010906117760141e-01, 5.1673756579268559e+00, 3.2580350909220819e+00, 1.0392903763919172e+01, 4.8101776408668879e+00, 1.0183724507092480e+01, 3.1282000712126603e+00, 4.8615933365571822e+00, 7.5604535083144497e-01, 9.0332828533799658e-01},
	{2.7080869856154512e+00, 7.8319071217995688e+00, 1.2201607990980744e+01, 1.8651500443681620e+01, 1.8758157568004549e+01, 1.8276088095999022e+01, 1.1715361303018897e+01, 7.3684394621253499e+00, 2.4965418284511904e+00, 9.0332828533800436e-01},
	{4.9479835250075892e+00, 1.4691607003177602e+01, 2.9082414772101060e+01, 4.3179839108869331e+01, 4.8440791644688879e+01, 4.2310703962394342e+01, 2.7923434247706432e+01, 1.3822186510471010e+01, 4.5614664160654357e+00, 9.0332828533799958e-01},
	{6.1701893352279846e+00, 2.0127225876810336e+01, 4.2974193398071684e+01, 6.5958045321253451e+01, 7.5230437667866596e+01, 6.4630411355739852e+01, 4.1261591079244127e+01, 1.8936128791950534e+01, 5.6881982915180291e+00, 9.0332828533799803e-01},
	{7.4092912870072398e+00, 2.6857944460290135e+01, 6.1578787811202247e+01, 9.8258255839887312e+01, 1.1359460153696298e+02, 9.6280452143026082e+01, 5.9124742025776392e+01, 2.5268527576524203e+01, 6.8305064480743081e+00, 9.0332828533799969e-01},
	{8.5743055776347692e+00, 3.4306584753117889e+01, 8.4035290411037053e+01, 1.3928510844056814e+02, 1.6305115418161620e+02, 1.3648147221895786e+02, 8.0686288623299745e+01, 3.2276361903872115e+01, 7.9045143816244696e+00, 9.0332828533799636e-01},
}

// iirBCoefficients holds the feed-forward taps b[0]..b[10] of each
// channel's resonator.
var iirBCoefficients = [ChannelCount][IIRBCount]float64{
	{9.0928661148194738e-10, 0.0000000000000000e+00, -4.5464330574097372e-09, 0.0000000000000000e+00, 9.0928661148194745e-09, 0.0000000000000000e+00, -9.0928661148194745e-09, 0.0000000000000000e+00, 4.5464330574097372e-09, 0.0000000000000000e+00, -9.0928661148194738e-10},
	{9.0928661148185608e-10, 0.0000000000000000e+00, -4.5464330574092806e-09, 0.0000000000000000e+00, 9.0928661148185613e-09, 0.0000000000000000e+00, -9.0928661148185613e-09, 0.0000000000000000e+00, 4.5464330574092806e-09, 0.0000000000000000e+00, -9.0928661148185608e-10},
	{9.0928661148182951e-10, 0.0000000000000000e+00, -4.5464330574091475e-09, 0.0000000000000000e+00, 9.0928661148182949e-09, 0.0000000000000000e+00, -9.0928661148182949e-09, 0.0000000000000000e+00, 4.5464330574091475e-09, 0.0000000000000000e+00, -9.0928661148182951e-10},
	{9.0928661148210734e-10, 0.0000000000000000e+00, -4.5464330574105371e-09, 0.0000000000000000e+00, 9.0928661148210742e-09, 0.0000000000000000e+00, -9.0928661148210742e-09, 0.0000000000000000e+00, 4.5464330574105371e-09, 0.0000000000000000e+00, -9.0928661148210734e-10},
	{9.0928661148197561e-10, 0.0000000000000000e+00, -4.5464330574098779e-09, 0.0000000000000000e+00, 9.0928661148197557e-09, 0.0000000000000000e+00, -9.0928661148197557e-09, 0.0000000000000000e+00, 4.5464330574098779e-09, 0.0000000000000000e+00, -9.0928661148197561e-10},
	{9.0928661148179839e-10, 0.0000000000000000e+00, -4.5464330574089919e-09, 0.0000000000000000e+00, 9.0928661148179839e-09, 0.0000000000000000e+00, -9.0928661148179839e-09, 0.0000000000000000e+00, 4.5464330574089919e-09, 0.0000000000000000e+00, -9.0928661148179839e-10},
	{9.0928661148193684e-10, 0.0000000000000000e+00, -4.5464330574096843e-09, 0.0000000000000000e+00, 9.0928661148193686e-09, 0.0000000000000000e+00, -9.0928661148193686e-09, 0.0000000000000000e+00, 4.5464330574096843e-09, 0.0000000000000000e+00, -9.0928661148193684e-10},
	{9.0928661148195069e-10, 0.0000000000000000e+00, -4.5464330574097538e-09, 0.0000000000000000e+00, 9.0928661148195076e-09, 0.0000000000000000e+00, -9.0928661148195076e-09, 0.0000000000000000e+00, 4.5464330574097538e-09, 0.0000000000000000e+00, -9.0928661148195069e-10},
	{9.0928661148190954e-10, 0.0000000000000000e+00, -4.5464330574095478e-09, 0.0000000000000000e+00, 9.0928661148190956e-09, 0.0000000000000000e+00, -9.0928661148190956e-09, 0.0000000000000000e+00, 4.5464330574095478e-09, 0.0000000000000000e+00, -9.0928661148190954e-10},
	{9.0928661148206091e-10, 0.0000000000000000e+00, -4.5464330574103047e-09, 0.0000000000000000e+00, 9.0928661148206094e-09, 0.0000000000000000e+00, -9.0928661148206094e-09, 0.0000000000000000e+00, 4.5464330574103047e-09, 0.0000000000000000e+00, -9.0928661148206091e-10},
}
