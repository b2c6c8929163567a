package irfacade

// Cast operations (spec §4.1 "Casts"). Each takes the value, the
// destination type and returns the cast value; validity of the pairing is
// the caller's responsibility (types.CreateConversion decides which of
// these to emit).

func (b *Builder) SExt(v Value, to Type) Value    { return b.llb.CreateSExt(v, to, "") }
func (b *Builder) ZExt(v Value, to Type) Value    { return b.llb.CreateZExt(v, to, "") }
func (b *Builder) Trunc(v Value, to Type) Value   { return b.llb.CreateTrunc(v, to, "") }
func (b *Builder) FPExt(v Value, to Type) Value   { return b.llb.CreateFPExt(v, to, "") }
func (b *Builder) FPTrunc(v Value, to Type) Value { return b.llb.CreateFPTrunc(v, to, "") }
func (b *Builder) SIToFP(v Value, to Type) Value  { return b.llb.CreateSIToFP(v, to, "") }
func (b *Builder) UIToFP(v Value, to Type) Value  { return b.llb.CreateUIToFP(v, to, "") }
func (b *Builder) FPToSI(v Value, to Type) Value  { return b.llb.CreateFPToSI(v, to, "") }
func (b *Builder) FPToUI(v Value, to Type) Value  { return b.llb.CreateFPToUI(v, to, "") }
func (b *Builder) BitCast(v Value, to Type) Value { return b.llb.CreateBitCast(v, to, "") }

// SExtOrSelf sign-extends v to to, or returns v unchanged if it is already
// that width. Used where a width-independent constant (e.g. a 32-bit
// snprintf result) must become usize on either a 32- or 64-bit target.
func (b *Builder) SExtOrSelf(v Value, to Type) Value {
	if v.Type().IntTypeWidth() == to.IntTypeWidth() {
		return v
	}
	return b.llb.CreateSExt(v, to, "")
}
