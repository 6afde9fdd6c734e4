package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/go-retro/bk11core/audio"
	"github.com/go-retro/bk11core/device"
	"github.com/go-retro/bk11core/machine"
	otosink "github.com/go-retro/bk11core/sink/oto"
)

// defaultLoadAddr is the BK-0010 monitor ROM's conventional base address.
const defaultLoadAddr = 0o160000

// sysRegAddr is the conventional address of the system register whose bit
// 6 drives the one-bit PCM output.
const sysRegAddr = 0o177716

// audioBufferSamples is the emission thread's fixed buffer size.
const audioBufferSamples = 1024

// minCyclesPerEdge is the base cycle count of the cheapest instruction, a
// lower bound on the cost of any instruction that writes the system
// register and flips the audio bit; used to size the edge ring.
const minCyclesPerEdge = 2

func newRunCommand() *cobra.Command {
	var (
		trace      bool
		cycles     uint64
		clockHz    uint64
		sampleRate uint64
		loadAddr   uint16
		ramSize    uint16
		withAudio  bool
	)

	cmd := &cobra.Command{
		Use:   "run <image>",
		Short: "Load a raw memory image as ROM and execute it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			image, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading image: %w", err)
			}

			comp := machine.New()
			comp.SetClockFrequency(clockHz)
			comp.SetPacing(!trace)

			if err := comp.AddMemory(0, make([]byte, ramSize), true); err != nil {
				return fmt.Errorf("mapping RAM: %w", err)
			}
			if err := comp.AddMemory(loadAddr, image, false); err != nil {
				return fmt.Errorf("mapping image: %w", err)
			}

			if withAudio {
				sink, err := otosink.New(sampleRate)
				if err != nil {
					return fmt.Errorf("opening audio sink: %w", err)
				}
				defer sink.Close()

				ring := audio.NewRing(audio.CapacityFor(audioBufferSamples, clockHz, sampleRate, minCyclesPerEdge))
				if err := comp.AddDevice(device.NewSysReg(sysRegAddr, ring)); err != nil {
					return fmt.Errorf("registering system register: %w", err)
				}
				comp.Reset()
				comp.AttachAudio(ring, sink, sampleRate, audioBufferSamples)
				defer comp.StopAudio()
			} else {
				comp.Reset()
			}

			if trace {
				runTraced(comp, cycles)
				return nil
			}

			nanos := cyclesToNanos(cycles, clockHz)
			comp.ExecuteFor(nanos)
			printState(comp)
			return nil
		},
	}

	cmd.Flags().BoolVar(&trace, "trace", false, "print register state after every instruction")
	cmd.Flags().Uint64Var(&cycles, "cycles", 1_000_000, "how many CPU cycles to run")
	cmd.Flags().Uint64Var(&clockHz, "clock-hz", 3_000_000, "CPU clock frequency in Hz")
	cmd.Flags().Uint64Var(&sampleRate, "sample-rate", 22050, "audio sample rate, used only with --audio")
	cmd.Flags().Uint16Var(&loadAddr, "load-addr", defaultLoadAddr, "address the image is mapped to as ROM")
	cmd.Flags().Uint16Var(&ramSize, "ram-size", 0x8000, "size in bytes of the RAM region mapped at address 0")
	cmd.Flags().BoolVar(&withAudio, "audio", false, "play the one-bit PCM output through the host speaker")

	return cmd
}

func cyclesToNanos(cycles, clockHz uint64) uint64 {
	if clockHz == 0 {
		return 0
	}
	return cycles * uint64(time.Second) / clockHz
}

func runTraced(comp *machine.Computer, cycles uint64) {
	var ran uint64
	for ran < cycles {
		if comp.Cpu().Halted() {
			break
		}
		spent := comp.ExecuteSingleInstruction()
		ran += uint64(spent)
		printState(comp)
	}
}

func printState(comp *machine.Computer) {
	regs := comp.Cpu().Registers()
	fmt.Printf("pc=%06o sp=%06o psw=%06o cycles=%d halted=%t\n",
		regs.R[7], regs.R[6], regs.PSW, comp.Cpu().Cycles(), comp.Cpu().Halted())
	for i, r := range regs.R[:6] {
		fmt.Printf("  r%d=%06o", i, r)
	}
	fmt.Println()
}
