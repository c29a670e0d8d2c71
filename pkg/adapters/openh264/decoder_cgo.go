//go:build cgo

package openh264

/*
#cgo pkg-config: openh264
#include <wels/codec_api.h>
#include <stdlib.h>
#include <string.h>

typedef struct {
    unsigned char* planes[3];
    int width;
    int height;
    int stride_y;
    int stride_uv;
} h264play_picture;

static int h264play_open(ISVCDecoder** out) {
    ISVCDecoder* dec = NULL;
    SDecodingParam param;

    if (WelsCreateDecoder(&dec) != 0 || dec == NULL) {
        return -1;
    }

    memset(&param, 0, sizeof(param));
    param.sVideoProperty.eVideoBsType = VIDEO_BITSTREAM_AVC;
    param.uiTargetDqLayer = (unsigned char)-1;

    if ((*dec)->Initialize(dec, &param) != 0) {
        WelsDestroyDecoder(dec);
        return -2;
    }

    *out = dec;
    return 0;
}

// Returns the DECODING_STATE. pic->width is 0 when no picture is ready.
static int h264play_decode(ISVCDecoder* dec, const unsigned char* src, int len, h264play_picture* pic) {
    SBufferInfo info;
    DECODING_STATE state;

    memset(&info, 0, sizeof(info));
    memset(pic, 0, sizeof(*pic));

    state = (*dec)->DecodeFrameNoDelay(dec, src, len, pic->planes, &info);
    if (state != dsErrorFree) {
        return (int)state;
    }
    if (info.iBufferStatus != 1) {
        return 0;
    }

    pic->width = info.UsrData.sSystemBuffer.iWidth;
    pic->height = info.UsrData.sSystemBuffer.iHeight;
    pic->stride_y = info.UsrData.sSystemBuffer.iStride[0];
    pic->stride_uv = info.UsrData.sSystemBuffer.iStride[1];
    return 0;
}

static void h264play_close(ISVCDecoder* dec) {
    (*dec)->Uninitialize(dec);
    WelsDestroyDecoder(dec);
}
*/
import "C"

import (
	"fmt"
	"unsafe"

	"github.com/user/h264play/pkg/ports"
)

type handle struct {
	dec *C.ISVCDecoder
	pic C.h264play_picture
}

func openHandle() (*handle, error) {
	var dec *C.ISVCDecoder
	if rc := C.h264play_open(&dec); rc != 0 {
		return nil, fmt.Errorf("%w: initialization failed (%d)", ErrUnavailable, int(rc))
	}
	return &handle{dec: dec}, nil
}

func (h *handle) decode(unit []byte) (*ports.Picture, error) {
	state := C.h264play_decode(
		h.dec,
		(*C.uchar)(unsafe.Pointer(&unit[0])),
		C.int(len(unit)),
		&h.pic,
	)
	if state != 0 {
		return nil, fmt.Errorf("%w: state 0x%x", ErrDecodeFailed, int(state))
	}

	width, height := int(h.pic.width), int(h.pic.height)
	if width == 0 || height == 0 || h.pic.planes[0] == nil {
		return nil, nil
	}

	strideY := int(h.pic.stride_y)
	strideUV := int(h.pic.stride_uv)
	chromaRows := (height + 1) / 2

	return &ports.Picture{
		Y:       unsafe.Slice((*byte)(unsafe.Pointer(h.pic.planes[0])), strideY*height),
		U:       unsafe.Slice((*byte)(unsafe.Pointer(h.pic.planes[1])), strideUV*chromaRows),
		V:       unsafe.Slice((*byte)(unsafe.Pointer(h.pic.planes[2])), strideUV*chromaRows),
		StrideY: strideY,
		StrideU: strideUV,
		StrideV: strideUV,
		Width:   width,
		Height:  height,
	}, nil
}

func (h *handle) close() {
	if h.dec != nil {
		C.h264play_close(h.dec)
		h.dec = nil
	}
}
