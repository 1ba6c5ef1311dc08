package gitlib

/*
#cgo pkg-config: libgit2
#include <git2.h>
#include <stdlib.h>
*/
import "C"

import (
	"runtime"
	"unsafe"
)

// git2go's package init runs git_libgit2_init before any call below.

// NewSignature asks libgit2 for a signature with an explicit time.
// offset is in minutes east of UTC.
func NewSignature(name, email string, unix int64, offset int) (Signature, error) {
	name, email, err := NormalizeIdentity(name, email)
	if err != nil {
		return Signature{}, err
	}

	err = ValidateOffset(offset)
	if err != nil {
		return Signature{}, err
	}

	cName := C.CString(name)
	defer C.free(unsafe.Pointer(cName))

	cEmail := C.CString(email)
	defer C.free(unsafe.Pointer(cEmail))

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	var csig *C.git_signature

	rc := C.git_signature_new(&csig, cName, cEmail, C.git_time_t(unix), C.int(offset))

	checkErr := checkError(rc)
	if checkErr != nil {
		return Signature{}, checkErr
	}

	defer C.git_signature_free(csig)

	return signatureFromC(csig), nil
}

// NowSignature asks libgit2 for a signature stamped with the current time
// and the local UTC offset.
func NowSignature(name, email string) (Signature, error) {
	name, email, err := NormalizeIdentity(name, email)
	if err != nil {
		return Signature{}, err
	}

	cName := C.CString(name)
	defer C.free(unsafe.Pointer(cName))

	cEmail := C.CString(email)
	defer C.free(unsafe.Pointer(cEmail))

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	var csig *C.git_signature

	rc := C.git_signature_now(&csig, cName, cEmail)

	checkErr := checkError(rc)
	if checkErr != nil {
		return Signature{}, checkErr
	}

	defer C.git_signature_free(csig)

	return signatureFromC(csig), nil
}

// checkError turns a libgit2 return code into an *Error.
// Callers must hold the OS thread since libgit2 keeps the last error per thread.
func checkError(rc C.int) error {
	if rc >= 0 {
		return nil
	}

	err := &Error{
		Message: "unknown libgit2 error",
		Code:    ErrorCode(rc),
		Class:   ErrorClassNone,
	}

	last := C.git_error_last()
	if last != nil {
		err.Class = ErrorClass(last.klass)
		err.Message = C.GoString(last.message)
	}

	return err
}

func signatureFromC(csig *C.git_signature) Signature {
	return Signature{
		Name:   C.GoString(csig.name),
		Email:  C.GoString(csig.email),
		Time:   int64(csig.when.time),
		Offset: int(csig.when.offset),
	}
}
