package arch

import "fmt"

// PLICDispatchStub renders the claim/complete dispatch stub generated when
// a RISC-V PLIC core_interrupt is configured (spec §4.7). coreInterrupt
// names the CLINT/PLIC-delivered core interrupt (e.g. "MachineExternal")
// that the stub is installed under.
func PLICDispatchStub(coreInterrupt string) string {
	return fmt.Sprintf(`#[no_mangle]
fn %s() {
    extern "C" {
        fn DefaultHandler();
    }

    let claim = PLIC::claim();

    match PLIC::try_from(claim) {
        Ok(interrupt) => {
            // Every claimed interrupt, recognized or not, is handled by
            // DefaultHandler; a recognized one is then completed.
            DefaultHandler();
            PLIC::complete(claim);
            let _ = interrupt;
        }
        Err(_) => unsafe { DefaultHandler() },
    }
}
`, coreInterrupt)
}
