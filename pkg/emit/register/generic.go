package register

// GenericModule returns the small support library of Reg/Reader/Writer
// traits every emitted register module depends on (spec §4.8,
// "generic-support module").
func GenericModule() string {
	return genericModule
}

// genericModule is the small support library of Reg/Reader/Writer traits
// every emitted register module depends on (spec §4.8, "generic-support
// module"). Its shape is grounded on
// original_source/src/generate/generic.rs's Reg<REG>/R<U,REG>/W<U,REG>/
// WProxy types, renamed to the FieldReader/FieldWriter vocabulary the spec
// itself uses (§4.5, §9) so the per-register emitter's generated code reads
// naturally against it. It is emitted once per bundle by the Artifact
// Assembler (spec §4.8), optionally split into a sibling file when
// Config.GenericMod is set.
const genericModule = `//! Generic register-access support shared by every peripheral module in
//! this device. Emitted once per bundle; every register-spec module below
//! depends on the types defined here.

use core::marker::PhantomData;
use core::ops::Deref;
use vcell::VolatileCell;

/// Marker trait implemented by a register spec that can be read.
pub trait Readable {}

/// Marker trait implemented by a register spec that can be written.
pub trait Writable {
    /// Bits of fields with a one-to-* modified-write kind; modify() writes
    /// them back as 0 so an untouched field of that kind is left alone.
    const ONE_TO_MODIFY_FIELDS_BITMAP: Self::Ux;
    /// Bits of fields with a zero-to-* modified-write kind; modify() writes
    /// them back as 1 so an untouched field of that kind is left alone.
    const ZERO_TO_MODIFY_FIELDS_BITMAP: Self::Ux;
}

/// Associates a register spec with its reset value.
pub trait Resettable {
    const RESET_VALUE: Self::Ux;
}

/// A register spec: the width-typed unsigned integer a register's bits are
/// stored in, plus the reset/access markers above.
pub trait RegisterSpec {
    type Ux: Copy
        + core::ops::Not<Output = Self::Ux>
        + core::ops::BitAnd<Output = Self::Ux>
        + core::ops::BitOr<Output = Self::Ux>;
}

/// Marker for a writer whose raw bits() accessor is safe to call with any
/// value the field's width admits.
pub struct Safe;
/// Marker for a writer whose raw bits() accessor requires the caller to
/// assert legality (spec §4.3, Unsafe).
pub struct Unsafe;
/// Marker for a writer whose raw bits() accessor is bounded to [MIN, MAX]
/// (spec §4.3, Range); emitted as a bounded-integer newtype instead of the
/// raw width type.
pub struct Range<const MIN: u64, const MAX: u64>;

/// Wrapper around one memory-mapped register of spec REG.
pub struct Reg<REG: RegisterSpec> {
    register: VolatileCell<REG::Ux>,
    _marker: PhantomData<REG>,
}

impl<REG: RegisterSpec> Reg<REG> {
    /// Returns the raw address of the underlying register cell, used by
    /// the atomic and bit-band extensions below.
    #[inline(always)]
    pub(crate) fn as_ptr(&self) -> *mut REG::Ux {
        self.register.as_ptr()
    }
}

impl<REG: RegisterSpec + Readable> Reg<REG> {
    /// Reads the contents of the register into a Reader.
    #[inline(always)]
    pub fn read(&self) -> R<REG> {
        R::new(self.register.get())
    }
}

impl<REG: RegisterSpec + Writable + Resettable> Reg<REG> {
    /// Writes the reset value to the register.
    #[inline(always)]
    pub fn reset(&self) {
        self.register.set(REG::RESET_VALUE)
    }

    /// Writes to the register, starting from the reset value.
    #[inline(always)]
    pub fn write<F>(&self, f: F)
    where
        F: FnOnce(&mut W<REG>) -> &mut W<REG>,
    {
        self.register.set(f(&mut W::new(REG::RESET_VALUE)).bits)
    }
}

impl<REG: RegisterSpec + Readable + Writable> Reg<REG> {
    /// Reads the register, applies f, and writes back the result, masking
    /// in the ONE_TO_MODIFY/ZERO_TO_MODIFY bitmaps so read-modify-write
    /// never disturbs a one-to-clear/zero-to-clear style field it did not
    /// intend to touch.
    #[inline(always)]
    pub fn modify<F>(&self, f: F)
    where
        for<'w> F: FnOnce(&R<REG>, &'w mut W<REG>) -> &'w mut W<REG>,
    {
        let bits = self.register.get();
        let base = bits & !REG::ONE_TO_MODIFY_FIELDS_BITMAP | REG::ZERO_TO_MODIFY_FIELDS_BITMAP;
        self.register.set(f(&R::new(bits), &mut W::new(base)).bits)
    }
}

/// Register reader: decodes the bits most recently read from a register.
pub struct R<REG: RegisterSpec> {
    bits: REG::Ux,
    _marker: PhantomData<REG>,
}

impl<REG: RegisterSpec> R<REG> {
    #[inline(always)]
    pub(crate) fn new(bits: REG::Ux) -> Self {
        Self { bits, _marker: PhantomData }
    }

    /// Returns the raw bits of the register.
    #[inline(always)]
    pub fn bits(&self) -> REG::Ux {
        self.bits
    }
}

/// Register writer: accumulates the bits that will be written back.
pub struct W<REG: RegisterSpec> {
    pub bits: REG::Ux,
    _marker: PhantomData<REG>,
}

impl<REG: RegisterSpec> W<REG> {
    #[inline(always)]
    pub(crate) fn new(bits: REG::Ux) -> Self {
        Self { bits, _marker: PhantomData }
    }
}

/// Decodes one field read out of a register's raw bits, optionally into an
/// enumerated variant type FI.
pub struct FieldReader<T, FI = T> {
    bits: T,
    _enum: PhantomData<FI>,
}

impl<T: Copy, FI> FieldReader<T, FI> {
    #[inline(always)]
    pub(crate) fn new(bits: T) -> Self {
        Self { bits, _enum: PhantomData }
    }

    /// Returns the raw bits of the field.
    #[inline(always)]
    pub fn bits(&self) -> T {
        self.bits
    }
}

impl<FI> FieldReader<bool, FI> {
    /// Returns ` + "`true`" + ` if the bit is set (1).
    #[inline(always)]
    pub fn bit(&self) -> bool {
        self.bits
    }

    /// Returns ` + "`true`" + ` if the bit is clear (0).
    #[inline(always)]
    pub fn bit_is_clear(&self) -> bool {
        !self.bits
    }

    /// Returns ` + "`true`" + ` if the bit is set (1).
    #[inline(always)]
    pub fn bit_is_set(&self) -> bool {
        self.bits
    }
}

/// A field-writer proxy bound to one field's offset within a register
/// writer. REG is the owning register spec, FI is the raw value type
/// accepted by bits(), and S is the safety marker (Safe / Range /
/// Unsafe) gating whether bits() requires an unsafe block.
pub struct FieldWriter<'a, REG, const WIDTH: u8, FI = u8, S = Safe>
where
    REG: RegisterSpec + Writable,
{
    w: &'a mut W<REG>,
    offset: u8,
    _field: PhantomData<(FI, S)>,
}

impl<'a, REG, const WIDTH: u8, FI, S> FieldWriter<'a, REG, WIDTH, FI, S>
where
    REG: RegisterSpec + Writable,
{
    #[inline(always)]
    pub(crate) fn new(w: &'a mut W<REG>, offset: u8) -> Self {
        Self { w, offset, _field: PhantomData }
    }
}

/// A single-bit field-writer proxy, specialized from FieldWriter for the
/// modified-write-aware set_bit/clear_bit/pulse setters (spec §4.5).
pub struct BitWriter<'a, REG, FI = bool>
where
    REG: RegisterSpec + Writable,
{
    w: &'a mut W<REG>,
    offset: u8,
    _field: PhantomData<FI>,
}

/// Single-instruction OR/AND/XOR against a register's raw bits, used by the
/// set_bits/clear_bits/toggle_bits extension (--atomics). Grounded on
/// portable_atomic's AtomicU8/16/32/64: each width is backed by a native
/// atomic type on targets that support it.
#[inline(always)]
pub(crate) fn atomic_or<REG: RegisterSpec + Readable + Writable>(reg: &Reg<REG>, bits: REG::Ux)
where
    REG::Ux: Into<u32> + Copy,
{
    unsafe {
        use portable_atomic::{AtomicU32, Ordering};
        (*(reg.as_ptr() as *const AtomicU32)).fetch_or(bits.into(), Ordering::SeqCst);
    }
}

#[inline(always)]
pub(crate) fn atomic_and<REG: RegisterSpec + Readable + Writable>(reg: &Reg<REG>, bits: REG::Ux)
where
    REG::Ux: Into<u32> + Copy,
{
    unsafe {
        use portable_atomic::{AtomicU32, Ordering};
        (*(reg.as_ptr() as *const AtomicU32)).fetch_and(bits.into(), Ordering::SeqCst);
    }
}

#[inline(always)]
pub(crate) fn atomic_xor<REG: RegisterSpec + Readable + Writable>(reg: &Reg<REG>, bits: REG::Ux)
where
    REG::Ux: Into<u32> + Copy,
{
    unsafe {
        use portable_atomic::{AtomicU32, Ordering};
        (*(reg.as_ptr() as *const AtomicU32)).fetch_xor(bits.into(), Ordering::SeqCst);
    }
}

/// Start address of the peripheral memory region addressable by
/// bit-banding, and the base of its corresponding alias region
/// (Cortex-M only; grounded on original_source/src/generate/generic_bb.rs).
const PERI_ADDRESS_START: usize = 0x4000_0000;
const PERI_BIT_BAND_BASE: usize = 0x4200_0000;

/// Writes one bit of reg via its bit-band alias, used by the bb_set/
/// bb_clear extension (--atomics on cortex-m). alias = BASE + (addr -
/// PERI_ADDRESS_START) * 32 + bit * 4.
#[inline(always)]
pub(crate) fn bb_write<REG: RegisterSpec>(reg: &Reg<REG>, bit: u8, set: bool) {
    let addr = reg.as_ptr() as usize;
    let bb_addr = PERI_BIT_BAND_BASE + (addr - PERI_ADDRESS_START) * 32 + 4 * (bit as usize);
    unsafe { core::ptr::write_volatile(bb_addr as *mut u32, u32::from(set)) };
}
`
