package acquire

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// mockRunner is a mock implementation of Runner
type mockRunner struct {
	stdout []byte
	stderr []byte
	err    error

	name string
	args []string
}

func (m *mockRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	m.name = name
	m.args = args
	return m.stdout, m.stderr, m.err
}

var _ = Describe("Tesseract", func() {
	var (
		runner    *mockRunner
		tesseract *Tesseract
		imagePath string
		text      string
		err       error
	)

	BeforeEach(func() {
		runner = &mockRunner{stdout: []byte("Faktura c. 2024/001\n")}
		tesseract = NewTesseractWithRunner("", "", runner)
		imagePath = filepath.Join(GinkgoT().TempDir(), "page.png")
		Expect(os.WriteFile(imagePath, []byte("not-a-real-png"), 0644)).To(Succeed())
	})

	JustBeforeEach(func() {
		text, err = tesseract.Recognize(context.Background(), imagePath)
	})

	When("the binary succeeds", func() {
		It("should not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("should return the binary's stdout", func() {
			Expect(text).To(Equal("Faktura c. 2024/001\n"))
		})

		It("should use the default binary name", func() {
			Expect(runner.name).To(Equal("tesseract"))
		})

		It("should request stdout output with the default language pair", func() {
			Expect(runner.args).To(Equal([]string{imagePath, "stdout", "-l", "ces+eng"}))
		})
	})

	When("a custom language pair is configured", func() {
		BeforeEach(func() {
			tesseract = NewTesseractWithRunner("tesseract", "deu+eng", runner)
		})

		It("should pass it to the binary", func() {
			Expect(runner.args).To(ContainElement("deu+eng"))
		})
	})

	When("the binary fails", func() {
		BeforeEach(func() {
			runner.err = errors.New("exit status 1")
			runner.stderr = []byte("Error in pixReadStream")
		})

		It("returns the error", func() {
			Expect(err).To(HaveOccurred())
		})

		It("should include the binary's stderr", func() {
			Expect(err.Error()).To(ContainSubstring("pixReadStream"))
		})

		It("should return empty text", func() {
			Expect(text).To(Equal(""))
		})
	})

	When("the image is not HEIC", func() {
		It("should hand the original file to the binary without staging", func() {
			Expect(runner.args[0]).To(Equal(imagePath))
		})
	})

	When("the image carries a HEIC brand but cannot be decoded", func() {
		BeforeEach(func() {
			imagePath = filepath.Join(GinkgoT().TempDir(), "photo.heic")
			Expect(os.WriteFile(imagePath, heicHeader("heic"), 0644)).To(Succeed())
		})

		It("returns a conversion error instead of invoking the binary", func() {
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("converting HEIC image"))
			Expect(runner.name).To(BeEmpty())
		})
	})
})

// heicHeader builds a minimal ftyp box carrying the given brand.
func heicHeader(brand string) []byte {
	header := []byte{0x00, 0x00, 0x00, 0x18}
	header = append(header, []byte("ftyp")...)
	header = append(header, []byte(brand)...)
	header = append(header, make([]byte, 12)...)
	return header
}

var _ = Describe("isHEICFile", func() {
	var tmpDir string

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
	})

	write := func(name string, data []byte) string {
		path := filepath.Join(tmpDir, name)
		Expect(os.WriteFile(path, data, 0644)).To(Succeed())
		return path
	}

	It("should detect the heic brand", func() {
		Expect(isHEICFile(write("a.heic", heicHeader("heic")))).To(BeTrue())
	})

	It("should detect the heif brand", func() {
		Expect(isHEICFile(write("b.heif", heicHeader("heif")))).To(BeTrue())
	})

	It("should detect the mif1 brand", func() {
		Expect(isHEICFile(write("c.heic", heicHeader("mif1")))).To(BeTrue())
	})

	It("should detect the msf1 brand", func() {
		Expect(isHEICFile(write("d.heic", heicHeader("msf1")))).To(BeTrue())
	})

	It("should reject other ftyp brands", func() {
		Expect(isHEICFile(write("e.mp4", heicHeader("isom")))).To(BeFalse())
	})

	It("should reject files without an ftyp box", func() {
		Expect(isHEICFile(write("f.png", []byte("\x89PNG\r\n\x1a\nrestofheader")))).To(BeFalse())
	})

	It("should reject files shorter than the header", func() {
		Expect(isHEICFile(write("g.bin", []byte("tiny")))).To(BeFalse())
	})

	It("should reject a missing file", func() {
		Expect(isHEICFile(filepath.Join(tmpDir, "missing.heic"))).To(BeFalse())
	})
})
