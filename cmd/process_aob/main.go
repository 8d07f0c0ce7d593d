package main

import (
	"flag"
	"fmt"
	"os"

	"golang.org/x/arch/x86/x86asm"

	"sonicsplit/game"
	"sonicsplit/hexdump"
	"sonicsplit/pe_header"
	"sonicsplit/process"
	"sonicsplit/resolver"
	"sonicsplit/signature"
)

func main() {
	pidFlag := flag.Int("pid", 0, "Process ID to attach to (default: find by -name)")
	nameFlag := flag.String("name", game.ProcessNames[0], "Executable name of the game")
	aobFlag := flag.String("aob", "", "Signature to scan for (e.g. '81 F9 ???????? 0F 87'); default: the built-in signatures")
	contextFlag := flag.Int("context", 32, "Bytes to dump before and after each hit")
	insnFlag := flag.Int("insns", 6, "Instructions to disassemble from each hit")
	plainFlag := flag.Bool("plain", false, "Disable colors")
	flag.Parse()

	sigs := resolver.Signatures()
	if *aobFlag != "" {
		aob, err := signature.Parse(*aobFlag)
		if err != nil {
			fmt.Printf("Error parsing AOB: %v\n", err)
			os.Exit(1)
		}
		sigs = []signature.Signature{{Name: "custom", Text: *aobFlag, AOB: aob}}
	}

	attacher := newAttacher()
	proc, err := attach(attacher, *pidFlag, *nameFlag)
	if err != nil {
		fmt.Printf("Error attaching: %v\n", err)
		os.Exit(1)
	}
	defer proc.Close()

	module, err := attacher.Module(proc, *nameFlag)
	if err != nil {
		fmt.Printf("Error locating %s: %v\n", *nameFlag, err)
		os.Exit(1)
	}
	fmt.Printf("Attached to process %d, module %s\n", proc.GetPID(), module)

	mode := 32
	if h, err := pe_header.Read(proc, module.Base); err == nil {
		fmt.Println("Image:", h)
		if h.Is64() {
			mode = 64
		}
	} else {
		fmt.Printf("No PE header (%v), disassembling as x86\n", err)
	}

	for _, sig := range sigs {
		fmt.Printf("\n%s\n  %s\n", sig.Name, hexdump.Pattern(sig.AOB))

		hit, err := sig.ScanModule(proc, module)
		if err != nil {
			fmt.Printf("  not found: %v\n", err)
			continue
		}
		fmt.Printf("  found at %s (module+0x%X)\n", hit.ToString(), uint64(hit-module.Base))

		dumpAround(proc, hit, sig.AOB, *contextFlag, *plainFlag)
		disassemble(proc, hit, mode, *insnFlag)
	}
}

func attach(attacher process.ProcessAttacher, pid int, name string) (process.Process, error) {
	if pid != 0 {
		return openPID(process.ProcessID(pid))
	}
	return attacher.Attach(name)
}

func dumpAround(proc process.Process, hit process.ProcessMemoryAddress, aob process.AOB, context int, plain bool) {
	start := hit - process.ProcessMemoryAddress(context)
	size := process.ProcessMemorySize(2*context + aob.Len())

	data, err := proc.ReadMemory(start, size)
	if err != nil {
		// The hit itself is readable; only the surroundings may not be
		start, size = hit, process.ProcessMemorySize(aob.Len())
		if data, err = proc.ReadMemory(start, size); err != nil {
			fmt.Printf("  cannot read hit: %v\n", err)
			return
		}
	}

	fmt.Print(hexdump.Dump(data, uint64(start), hexdump.Options{
		Match:       aob,
		MatchOffset: int(hit - start),
		Plain:       plain,
	}))
}

func disassemble(proc process.Process, at process.ProcessMemoryAddress, mode, count int) {
	code, err := proc.ReadMemory(at, process.ProcessMemorySize(count*15))
	if err != nil {
		fmt.Printf("  cannot read code: %v\n", err)
		return
	}

	pc := uint64(at)
	for i := 0; i < count && len(code) > 0; i++ {
		inst, err := x86asm.Decode(code, mode)
		if err != nil {
			fmt.Printf("  %016x  (bad) %02x\n", pc, code[0])
			code, pc = code[1:], pc+1
			continue
		}
		fmt.Printf("  %016x  %-30x %s\n", pc, code[:inst.Len], x86asm.IntelSyntax(inst, pc, nil))
		code, pc = code[inst.Len:], pc+uint64(inst.Len)
	}
}
